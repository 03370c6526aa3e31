package workflows_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/workflows"
)

var t0 = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func newEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.SetStartTime(t0)
	env.RegisterWorkflow(workflows.OccupancyWorkflow)
	env.RegisterActivity(&workflows.OccupancyActivities{})
	return env
}

func input() workflows.OccupancyInput {
	return workflows.OccupancyInput{
		BookingID:  "B1",
		TerminalID: "T1",
		Start:      t0.Add(2 * time.Hour),
		End:        t0.Add(4 * time.Hour),
	}
}

func TestOccupancyWorkflow_OccupiesThenFrees(t *testing.T) {
	env := newEnv(t)

	var occupiedAt, freedAt time.Time
	env.OnActivity("AcceptIfPending", mock.Anything, "B1").Return(domain.BookingAccepted, nil).Once()
	env.OnActivity("BookingStatus", mock.Anything, "B1").Return(domain.BookingAccepted, nil).Once()
	env.OnActivity("MarkOccupied", mock.Anything, "T1", "B1").Return(func(ctx context.Context, terminalID, bookingID string) error {
		occupiedAt = env.Now()
		return nil
	}).Once()
	env.OnActivity("MarkFree", mock.Anything, "T1", "B1").Return(func(ctx context.Context, terminalID, bookingID string) error {
		freedAt = env.Now()
		return nil
	}).Once()

	env.ExecuteWorkflow(workflows.OccupancyWorkflow, input())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	env.AssertExpectations(t)
	assert.False(t, occupiedAt.Before(input().Start), "occupied before start: %s", occupiedAt)
	assert.False(t, freedAt.Before(input().End), "freed before end: %s", freedAt)
}

func TestOccupancyWorkflow_StopsWhenBookingReleased(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.BookingCancelled, domain.BookingRefused, domain.BookingExpired} {
		t.Run(string(status), func(t *testing.T) {
			env := newEnv(t)

			// MarkOccupied is left unmocked: the zero activities would fail the workflow if it ran.
			env.OnActivity("AcceptIfPending", mock.Anything, "B1").Return(status, nil).Once()

			env.ExecuteWorkflow(workflows.OccupancyWorkflow, input())

			require.True(t, env.IsWorkflowCompleted())
			require.NoError(t, env.GetWorkflowError())
			env.AssertExpectations(t)
		})
	}
}

func TestOccupancyWorkflow_CancelledBeforeStart(t *testing.T) {
	env := newEnv(t)

	env.OnActivity("AcceptIfPending", mock.Anything, "B1").Return(domain.BookingAccepted, nil).Once()
	env.OnActivity("BookingStatus", mock.Anything, "B1").Return(domain.BookingCancelled, nil).Once()

	env.ExecuteWorkflow(workflows.OccupancyWorkflow, input())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	env.AssertExpectations(t)
}

func TestOccupancyWorkflow_CancelMidSlotStillFrees(t *testing.T) {
	env := newEnv(t)

	freed := false
	env.OnActivity("AcceptIfPending", mock.Anything, "B1").Return(domain.BookingAccepted, nil).Once()
	env.OnActivity("BookingStatus", mock.Anything, "B1").Return(domain.BookingAccepted, nil).Once()
	env.OnActivity("MarkOccupied", mock.Anything, "T1", "B1").Return(nil).Once()
	env.OnActivity("MarkFree", mock.Anything, "T1", "B1").Return(func(ctx context.Context, terminalID, bookingID string) error {
		freed = true
		return nil
	}).Once()

	env.RegisterDelayedCallback(env.CancelWorkflow, 3*time.Hour)
	env.ExecuteWorkflow(workflows.OccupancyWorkflow, input())

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.True(t, temporal.IsCanceledError(err), "expected cancellation, got %v", err)
	assert.True(t, freed, "terminal must be freed after a mid-slot cancellation")
}

func TestOccupancyWorkflow_StartInThePast(t *testing.T) {
	env := newEnv(t)

	in := input()
	in.Start = t0.Add(-time.Hour)
	in.End = t0.Add(time.Hour)

	env.OnActivity("AcceptIfPending", mock.Anything, "B1").Return(domain.BookingPending, nil).Once()
	env.OnActivity("BookingStatus", mock.Anything, "B1").Return(domain.BookingAccepted, nil).Once()
	env.OnActivity("MarkOccupied", mock.Anything, "T1", "B1").Return(nil).Once()
	env.OnActivity("MarkFree", mock.Anything, "T1", "B1").Return(nil).Once()

	env.ExecuteWorkflow(workflows.OccupancyWorkflow, in)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	env.AssertExpectations(t)
}
