package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/core/ports"
)

// TerminalService handles single-terminal lookups.
type TerminalService struct {
	terminals ports.TerminalRepository
	bookings  ports.BookingIndex
}

// NewTerminalService creates a new TerminalService.
func NewTerminalService(terminals ports.TerminalRepository, bookings ports.BookingIndex) *TerminalService {
	return &TerminalService{terminals: terminals, bookings: bookings}
}

// GetByID returns a terminal or an error wrapping domain.ErrNotFound.
func (s *TerminalService) GetByID(ctx context.Context, id string) (*domain.Terminal, error) {
	t, err := s.terminals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get terminal %s: %w", domain.ErrCollaboratorUnavailable, id, err)
	}
	return t, nil
}

// Bookings returns the blocking bookings of a terminal, restricted to those
// overlapping window when it is non-nil.
func (s *TerminalService) Bookings(ctx context.Context, id string, window *domain.TimeWindow) ([]domain.BookingInterval, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	all, err := s.bookings.BlockingBookingsFor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: bookings for %s: %w", domain.ErrCollaboratorUnavailable, id, err)
	}

	out := make([]domain.BookingInterval, 0, len(all))
	for _, b := range all {
		if !b.Status.Blocking() {
			continue
		}
		if window != nil && !window.Overlaps(domain.TimeWindow{Start: b.Start, End: b.End}) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
