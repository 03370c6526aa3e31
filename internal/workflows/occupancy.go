package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

// TaskQueue is the task queue served by the scheduler worker.
const TaskQueue = "terminal-occupancy"

// AcceptLeadTime is how long before its start a pending booking is accepted.
const AcceptLeadTime = 30 * time.Minute

// OccupancyInput is the input for the occupancy workflow.
type OccupancyInput struct {
	BookingID  string
	TerminalID string
	Start      time.Time
	End        time.Time
}

// OccupancyWorkflow drives one booking's terminal occupancy: it accepts a
// still-pending booking shortly before the slot, marks the terminal occupied
// at start and frees it at end. It stops early if the booking is refused,
// cancelled or expired by then.
func OccupancyWorkflow(ctx workflow.Context, input OccupancyInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting occupancy workflow", "booking", input.BookingID, "terminal", input.TerminalID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: accept a pending booking ahead of time
	if err := sleepUntil(ctx, input.Start.Add(-AcceptLeadTime)); err != nil {
		return err
	}
	var status domain.BookingStatus
	if err := workflow.ExecuteActivity(ctx, "AcceptIfPending", input.BookingID).Get(ctx, &status); err != nil {
		return err
	}
	if !status.Blocking() {
		logger.Info("Booking no longer holds its slot", "booking", input.BookingID, "status", status)
		return nil
	}

	// Step 2: occupy at start, unless the booking was cancelled meanwhile
	if err := sleepUntil(ctx, input.Start); err != nil {
		return err
	}
	if err := workflow.ExecuteActivity(ctx, "BookingStatus", input.BookingID).Get(ctx, &status); err != nil {
		return err
	}
	if !status.Blocking() {
		logger.Info("Booking released before start", "booking", input.BookingID, "status", status)
		return nil
	}
	if err := workflow.ExecuteActivity(ctx, "MarkOccupied", input.TerminalID, input.BookingID).Get(ctx, nil); err != nil {
		return err
	}

	// Step 3: free at end. A cancellation mid-slot still frees the terminal.
	sleepErr := sleepUntil(ctx, input.End)
	if temporal.IsCanceledError(sleepErr) {
		ctx, _ = workflow.NewDisconnectedContext(ctx)
	} else if sleepErr != nil {
		return sleepErr
	}
	if err := workflow.ExecuteActivity(ctx, "MarkFree", input.TerminalID, input.BookingID).Get(ctx, nil); err != nil {
		return err
	}

	logger.Info("Occupancy workflow completed", "booking", input.BookingID)
	return sleepErr
}

// sleepUntil blocks until t in workflow time; past instants return at once.
func sleepUntil(ctx workflow.Context, t time.Time) error {
	d := t.Sub(workflow.Now(ctx))
	if d <= 0 {
		return nil
	}
	return workflow.Sleep(ctx, d)
}
