package workflows

import (
	"context"
	"fmt"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/core/usecases"
)

// OccupancyActivities holds the activity implementations for the occupancy workflow.
type OccupancyActivities struct {
	Bookings  *usecases.BookingScheduleService
	Occupancy *usecases.OccupancyService
}

// AcceptIfPending accepts a pending booking and returns its resulting status.
func (a *OccupancyActivities) AcceptIfPending(ctx context.Context, bookingID string) (domain.BookingStatus, error) {
	status, err := a.Bookings.AcceptIfPending(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("accept booking: %w", err)
	}
	return status, nil
}

// BookingStatus returns the current status of a booking.
func (a *OccupancyActivities) BookingStatus(ctx context.Context, bookingID string) (domain.BookingStatus, error) {
	return a.Bookings.Status(ctx, bookingID)
}

// MarkOccupied flags the terminal as in use by the booking.
func (a *OccupancyActivities) MarkOccupied(ctx context.Context, terminalID, bookingID string) error {
	if _, err := a.Occupancy.SetOccupied(ctx, terminalID, true, bookingID); err != nil {
		return fmt.Errorf("mark occupied: %w", err)
	}
	return nil
}

// MarkFree releases the terminal at the end of the booking.
func (a *OccupancyActivities) MarkFree(ctx context.Context, terminalID, bookingID string) error {
	if _, err := a.Occupancy.SetOccupied(ctx, terminalID, false, bookingID); err != nil {
		return fmt.Errorf("mark free: %w", err)
	}
	return nil
}
