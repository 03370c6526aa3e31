package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

// BookingRepo implements ports.BookingIndex and ports.BookingRepository with pgx.
type BookingRepo struct {
	db *DB
}

// NewBookingRepo creates a new BookingRepo.
func NewBookingRepo(db *DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func blockingStatuses() []string {
	out := make([]string, len(domain.BlockingBookingStatuses))
	for i, s := range domain.BlockingBookingStatuses {
		out[i] = string(s)
	}
	return out
}

// BlockingBookingsFor returns the pending and accepted bookings of a terminal.
func (r *BookingRepo) BlockingBookingsFor(ctx context.Context, terminalID string) ([]domain.BookingInterval, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT terminal_id, starts_at, ends_at, status
		FROM bookings
		WHERE terminal_id = $1 AND status = ANY($2)
		ORDER BY starts_at
	`, terminalID, blockingStatuses())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanInterval)
}

// BlockingBookingsForWindow returns the blocking bookings overlapping w,
// grouped by terminal.
func (r *BookingRepo) BlockingBookingsForWindow(ctx context.Context, w domain.TimeWindow) (map[string][]domain.BookingInterval, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT terminal_id, starts_at, ends_at, status
		FROM bookings
		WHERE starts_at < $2 AND ends_at > $1 AND status = ANY($3)
	`, w.Start, w.End, blockingStatuses())
	if err != nil {
		return nil, err
	}
	intervals, err := pgx.CollectRows(rows, scanInterval)
	if err != nil {
		return nil, err
	}

	byTerminal := make(map[string][]domain.BookingInterval)
	for _, b := range intervals {
		byTerminal[b.TerminalID] = append(byTerminal[b.TerminalID], b)
	}
	return byTerminal, nil
}

// GetByID returns a booking by UUID.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("booking %q: %w", id, domain.ErrNotFound)
	}
	rows, err := r.db.Pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBooking)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateStatus moves a booking to status.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	if !isUUID(id) {
		return fmt.Errorf("booking %q: %w", id, domain.ErrNotFound)
	}
	tag, err := r.db.Pool.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListUpcomingBlocking returns blocking bookings that end after the given
// instant, earliest start first.
func (r *BookingRepo) ListUpcomingBlocking(ctx context.Context, after time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE ends_at > $1 AND status = ANY($2)
		ORDER BY starts_at
	`, after, blockingStatuses())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanBooking)
}

// ListReleasedInSlot returns refused, cancelled or expired bookings whose
// slot is under way at the given instant.
func (r *BookingRepo) ListReleasedInSlot(ctx context.Context, at time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE starts_at <= $1 AND ends_at > $1 AND NOT (status = ANY($2))
		ORDER BY starts_at
	`, at, blockingStatuses())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanBooking)
}

const bookingColumns = `
	id, number, terminal_id, user_id, COALESCE(car_id::text, ''), option_id::text,
	status, starts_at, ends_at, total_amount::float8, paid_at, created_at`

func scanBooking(row pgx.CollectableRow) (domain.Booking, error) {
	var b domain.Booking
	var status string
	err := row.Scan(
		&b.ID, &b.Number, &b.TerminalID, &b.UserID, &b.CarID, &b.OptionID,
		&status, &b.Start, &b.End, &b.TotalAmount, &b.PaidAt, &b.CreatedAt,
	)
	b.Status = domain.BookingStatus(status)
	return b, err
}

func scanInterval(row pgx.CollectableRow) (domain.BookingInterval, error) {
	var b domain.BookingInterval
	var status string
	err := row.Scan(&b.TerminalID, &b.Start, &b.End, &status)
	b.Status = domain.BookingStatus(status)
	return b, err
}
