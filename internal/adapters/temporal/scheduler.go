package temporal

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/workflows"
)

// WorkflowID is the occupancy workflow id of a booking.
func WorkflowID(bookingID string) string {
	return "occupancy-" + bookingID
}

// starter is the part of client.Client the scheduler uses.
type starter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	CancelWorkflow(ctx context.Context, workflowID string, runID string) error
}

// Scheduler implements ports.OccupancyScheduler with Temporal workflows.
type Scheduler struct {
	client    starter
	taskQueue string
}

// NewScheduler creates a Scheduler. An empty taskQueue uses workflows.TaskQueue.
func NewScheduler(c client.Client, taskQueue string) *Scheduler {
	return newScheduler(c, taskQueue)
}

func newScheduler(c starter, taskQueue string) *Scheduler {
	if taskQueue == "" {
		taskQueue = workflows.TaskQueue
	}
	return &Scheduler{client: c, taskQueue: taskQueue}
}

// ScheduleBooking starts the occupancy workflow of a booking. Starting a
// booking that already has a running workflow is a no-op.
func (s *Scheduler) ScheduleBooking(ctx context.Context, b *domain.Booking) error {
	opts := client.StartWorkflowOptions{
		ID:                    WorkflowID(b.ID),
		TaskQueue:             s.taskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
	}
	input := workflows.OccupancyInput{
		BookingID:  b.ID,
		TerminalID: b.TerminalID,
		Start:      b.Start,
		End:        b.End,
	}

	_, err := s.client.ExecuteWorkflow(ctx, opts, workflows.OccupancyWorkflow, input)
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("start occupancy workflow %s: %w", opts.ID, err)
	}
	return nil
}

// CancelBooking cancels the occupancy workflow of a booking. Unknown or
// finished workflows are ignored.
func (s *Scheduler) CancelBooking(ctx context.Context, bookingID string) error {
	err := s.client.CancelWorkflow(ctx, WorkflowID(bookingID), "")
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cancel occupancy workflow %s: %w", WorkflowID(bookingID), err)
	}
	return nil
}
