package ports

import (
	"context"
	"time"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

// TerminalCatalog is a read-only view of all charging terminals.
type TerminalCatalog interface {
	AllTerminals(ctx context.Context) ([]domain.Terminal, error)
}

// BoundedTerminalCatalog is implemented by catalogs that can push a
// bounding-box pre-filter down to storage. The result may be a superset of
// the terminals within the box but must never miss one inside it.
type BoundedTerminalCatalog interface {
	TerminalCatalog
	TerminalsWithin(ctx context.Context, bounds domain.Bounds) ([]domain.Terminal, error)
}

// BookingIndex is a read-only view of blocking bookings per terminal.
type BookingIndex interface {
	BlockingBookingsFor(ctx context.Context, terminalID string) ([]domain.BookingInterval, error)
	// BlockingBookingsForWindow returns, keyed by terminal id, every blocking
	// booking that overlaps window.
	BlockingBookingsForWindow(ctx context.Context, window domain.TimeWindow) (map[string][]domain.BookingInterval, error)
}

// TerminalRepository reads and updates single terminals.
type TerminalRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Terminal, error)
	SetOccupied(ctx context.Context, id string, occupied bool, status domain.TerminalStatus) error
}

// BookingRepository reads bookings and moves them through their lifecycle.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
	// ListUpcomingBlocking returns blocking bookings ending after the given instant, ordered by start.
	ListUpcomingBlocking(ctx context.Context, after time.Time) ([]domain.Booking, error)
	// ListReleasedInSlot returns non-blocking bookings whose slot contains the given instant.
	ListReleasedInSlot(ctx context.Context, at time.Time) ([]domain.Booking, error)
}
