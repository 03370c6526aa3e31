package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/core/ports"
	"github.com/samirrijal/ebcharge/internal/pkg/metrics"
)

// CatalogInvalidator drops cached catalog snapshots.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

// OccupancyService flips terminal occupancy and announces the change.
type OccupancyService struct {
	terminals   ports.TerminalRepository
	publisher   ports.EventPublisher
	invalidator CatalogInvalidator
	now         func() time.Time
}

// NewOccupancyService creates a new OccupancyService. publisher and
// invalidator may be nil.
func NewOccupancyService(terminals ports.TerminalRepository, publisher ports.EventPublisher, invalidator CatalogInvalidator) *OccupancyService {
	return &OccupancyService{
		terminals:   terminals,
		publisher:   publisher,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// SetOccupied marks a terminal occupied or free on behalf of a booking.
// Terminals under repair, out of service or broken keep their status and
// only have the occupied flag updated.
func (s *OccupancyService) SetOccupied(ctx context.Context, terminalID string, occupied bool, bookingID string) (*domain.OccupancyEvent, error) {
	t, err := s.terminals.GetByID(ctx, terminalID)
	if err != nil {
		return nil, fmt.Errorf("get terminal %s: %w", terminalID, err)
	}

	status := t.Status
	if status == domain.TerminalAvailable || status == domain.TerminalOccupied {
		status = domain.TerminalAvailable
		if occupied {
			status = domain.TerminalOccupied
		}
	}

	if err := s.terminals.SetOccupied(ctx, terminalID, occupied, status); err != nil {
		return nil, fmt.Errorf("set occupied %s: %w", terminalID, err)
	}
	metrics.OccupancyChanges.WithLabelValues(strconv.FormatBool(occupied)).Inc()

	s.invalidate(ctx)

	event := &domain.OccupancyEvent{
		TerminalID: terminalID,
		Occupied:   occupied,
		Status:     status,
		BookingID:  bookingID,
		Time:       s.now().UTC(),
	}
	if s.publisher != nil {
		// Best-effort; the row is already updated.
		if err := s.publisher.PublishOccupancy(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish occupancy failed", "terminal", terminalID, "error", err)
		}
	}
	return event, nil
}

// HandleOccupancyEvent reacts to occupancy changes made by other instances.
func (s *OccupancyService) HandleOccupancyEvent(ctx context.Context, event *domain.OccupancyEvent) error {
	slog.DebugContext(ctx, "occupancy changed", "terminal", event.TerminalID, "occupied", event.Occupied)
	s.invalidate(ctx)
	return nil
}

func (s *OccupancyService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		slog.WarnContext(ctx, "catalog cache invalidation failed", "error", err)
	}
}
