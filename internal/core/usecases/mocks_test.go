package usecases_test

import (
	"context"
	"errors"
	"time"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

// --- Mock TerminalCatalog ---

type mockCatalog struct {
	allFn func(ctx context.Context) ([]domain.Terminal, error)
	calls int
}

func (m *mockCatalog) AllTerminals(ctx context.Context) ([]domain.Terminal, error) {
	m.calls++
	if m.allFn != nil {
		return m.allFn(ctx)
	}
	return nil, nil
}

// --- Mock BoundedTerminalCatalog ---

type mockBoundedCatalog struct {
	mockCatalog
	withinFn  func(ctx context.Context, b domain.Bounds) ([]domain.Terminal, error)
	lastBound *domain.Bounds
}

func (m *mockBoundedCatalog) TerminalsWithin(ctx context.Context, b domain.Bounds) ([]domain.Terminal, error) {
	m.lastBound = &b
	if m.withinFn != nil {
		return m.withinFn(ctx, b)
	}
	return nil, nil
}

// --- Mock BookingIndex ---

type mockBookingIndex struct {
	intervals []domain.BookingInterval
	err       error
	calls     int
}

func (m *mockBookingIndex) BlockingBookingsFor(ctx context.Context, terminalID string) ([]domain.BookingInterval, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.BookingInterval
	for _, b := range m.intervals {
		if b.TerminalID == terminalID {
			out = append(out, b)
		}
	}
	return out, nil
}

// BlockingBookingsForWindow returns every stored interval, non-blocking ones
// included, so the engine's own status check is exercised.
func (m *mockBookingIndex) BlockingBookingsForWindow(ctx context.Context, w domain.TimeWindow) (map[string][]domain.BookingInterval, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string][]domain.BookingInterval)
	for _, b := range m.intervals {
		out[b.TerminalID] = append(out[b.TerminalID], b)
	}
	return out, nil
}

// --- Mock TerminalRepository ---

type mockTerminalRepo struct {
	terminals map[string]*domain.Terminal
	setErr    error
	updates   []domain.Terminal
}

func (m *mockTerminalRepo) GetByID(ctx context.Context, id string) (*domain.Terminal, error) {
	t, ok := m.terminals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTerminalRepo) SetOccupied(ctx context.Context, id string, occupied bool, status domain.TerminalStatus) error {
	if m.setErr != nil {
		return m.setErr
	}
	t := m.terminals[id]
	t.Occupied = occupied
	t.Status = status
	m.updates = append(m.updates, *t)
	return nil
}

// --- Mock BookingRepository ---

type mockBookingRepo struct {
	bookings map[string]*domain.Booking
	listErr  error
	updated  map[string]domain.BookingStatus
	released []domain.Booking
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	if m.updated == nil {
		m.updated = make(map[string]domain.BookingStatus)
	}
	m.updated[id] = status
	m.bookings[id].Status = status
	return nil
}

func (m *mockBookingRepo) ListUpcomingBlocking(ctx context.Context, after time.Time) ([]domain.Booking, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Booking
	for _, b := range m.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockBookingRepo) ListReleasedInSlot(ctx context.Context, at time.Time) ([]domain.Booking, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.released, nil
}

// --- Mock CacheService ---

type mockCache struct {
	data    map[string][]byte
	gets    int
	sets    int
	deletes int
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.gets++
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.deletes++
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []domain.OccupancyEvent
	err    error
}

func (m *mockPublisher) PublishOccupancy(ctx context.Context, e *domain.OccupancyEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, *e)
	return nil
}

// --- Mock OccupancyScheduler ---

type mockScheduler struct {
	scheduled []string
	cancelled []string
	failFor   map[string]bool
}

func (m *mockScheduler) ScheduleBooking(ctx context.Context, b *domain.Booking) error {
	if m.failFor[b.ID] {
		return errors.New("temporal unavailable")
	}
	m.scheduled = append(m.scheduled, b.ID)
	return nil
}

func (m *mockScheduler) CancelBooking(ctx context.Context, id string) error {
	if m.failFor[id] {
		return errors.New("temporal unavailable")
	}
	m.cancelled = append(m.cancelled, id)
	return nil
}

// --- helpers ---

func ptr[T any](v T) *T { return &v }

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ids(ts []domain.Terminal) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}
