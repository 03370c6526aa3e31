package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/core/ports"
	"github.com/samirrijal/ebcharge/internal/pkg/metrics"
)

// BookingScheduleService hands blocking bookings to the occupancy scheduler.
type BookingScheduleService struct {
	bookings  ports.BookingRepository
	scheduler ports.OccupancyScheduler
}

// NewBookingScheduleService creates a new BookingScheduleService.
func NewBookingScheduleService(bookings ports.BookingRepository, scheduler ports.OccupancyScheduler) *BookingScheduleService {
	return &BookingScheduleService{bookings: bookings, scheduler: scheduler}
}

// ScheduleUpcoming submits every blocking booking that ends after now.
// Scheduling is idempotent per booking, so this can run on every tick.
// It returns how many bookings were submitted and the joined failures.
func (s *BookingScheduleService) ScheduleUpcoming(ctx context.Context, now time.Time) (int, error) {
	upcoming, err := s.bookings.ListUpcomingBlocking(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("%w: list upcoming bookings: %w", domain.ErrCollaboratorUnavailable, err)
	}

	var (
		scheduled int
		errs      []error
	)
	for i := range upcoming {
		b := &upcoming[i]
		if !b.Status.Blocking() || !b.End.After(now) {
			continue
		}
		if err := s.scheduler.ScheduleBooking(ctx, b); err != nil {
			metrics.ScheduledBookings.WithLabelValues("error").Inc()
			errs = append(errs, fmt.Errorf("schedule booking %s: %w", b.ID, err))
			continue
		}
		metrics.ScheduledBookings.WithLabelValues("ok").Inc()
		scheduled++
	}

	if len(errs) > 0 {
		slog.WarnContext(ctx, "some bookings were not scheduled", "failed", len(errs), "scheduled", scheduled)
	}
	return scheduled, errors.Join(errs...)
}

// Cancel stops the occupancy schedule of a booking.
func (s *BookingScheduleService) Cancel(ctx context.Context, bookingID string) error {
	return s.scheduler.CancelBooking(ctx, bookingID)
}

// CancelReleased cancels the schedule of every booking released while its
// slot is under way, so its terminal is freed before the slot ends.
// Cancelling a finished schedule is a no-op, so this can run on every tick.
func (s *BookingScheduleService) CancelReleased(ctx context.Context, now time.Time) (int, error) {
	released, err := s.bookings.ListReleasedInSlot(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("%w: list released bookings: %w", domain.ErrCollaboratorUnavailable, err)
	}

	var (
		cancelled int
		errs      []error
	)
	for i := range released {
		b := &released[i]
		if b.Status.Blocking() || now.Before(b.Start) || !b.End.After(now) {
			continue
		}
		if err := s.Cancel(ctx, b.ID); err != nil {
			metrics.ScheduledBookings.WithLabelValues("cancel_error").Inc()
			errs = append(errs, fmt.Errorf("cancel booking %s: %w", b.ID, err))
			continue
		}
		metrics.ScheduledBookings.WithLabelValues("cancelled").Inc()
		cancelled++
	}
	return cancelled, errors.Join(errs...)
}

// AcceptIfPending accepts a booking still pending and returns the booking's
// resulting status.
func (s *BookingScheduleService) AcceptIfPending(ctx context.Context, bookingID string) (domain.BookingStatus, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	if b.Status != domain.BookingPending {
		return b.Status, nil
	}
	if err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingAccepted); err != nil {
		return "", fmt.Errorf("accept booking %s: %w", bookingID, err)
	}
	return domain.BookingAccepted, nil
}

// Status returns the current status of a booking.
func (s *BookingScheduleService) Status(ctx context.Context, bookingID string) (domain.BookingStatus, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	return b.Status, nil
}
