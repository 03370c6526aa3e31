package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

const terminalColumns = `
	id, COALESCE(place_id::text, ''), name,
	ST_Y(location::geometry) AS lat,
	ST_X(location::geometry) AS lon,
	occupied, status, power_kw::float8, price::float8, standing, created_at`

// TerminalRepo implements ports.TerminalCatalog, ports.BoundedTerminalCatalog
// and ports.TerminalRepository with pgx.
type TerminalRepo struct {
	db *DB
}

// NewTerminalRepo creates a new TerminalRepo.
func NewTerminalRepo(db *DB) *TerminalRepo {
	return &TerminalRepo{db: db}
}

// AllTerminals returns every terminal ordered by id.
func (r *TerminalRepo) AllTerminals(ctx context.Context) ([]domain.Terminal, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+terminalColumns+` FROM terminals ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectTerminals(rows)
}

// TerminalsWithin returns the terminals inside b. The planar envelope uses the
// geometry GiST index; edges are parallels and meridians like domain.Bounds.
func (r *TerminalRepo) TerminalsWithin(ctx context.Context, b domain.Bounds) ([]domain.Terminal, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+terminalColumns+`
		FROM terminals
		WHERE location::geometry && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		ORDER BY id
	`, b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
	if err != nil {
		return nil, err
	}
	return collectTerminals(rows)
}

// GetByID returns a terminal by UUID.
func (r *TerminalRepo) GetByID(ctx context.Context, id string) (*domain.Terminal, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("terminal %q: %w", id, domain.ErrNotFound)
	}
	rows, err := r.db.Pool.Query(ctx, `SELECT `+terminalColumns+` FROM terminals WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTerminal)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("terminal %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SetOccupied updates the occupied flag and status of a terminal.
func (r *TerminalRepo) SetOccupied(ctx context.Context, id string, occupied bool, status domain.TerminalStatus) error {
	if !isUUID(id) {
		return fmt.Errorf("terminal %q: %w", id, domain.ErrNotFound)
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE terminals SET occupied = $2, status = $3 WHERE id = $1
	`, id, occupied, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("terminal %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func collectTerminals(rows pgx.Rows) ([]domain.Terminal, error) {
	terminals, err := pgx.CollectRows(rows, scanTerminal)
	if err != nil {
		return nil, err
	}
	if terminals == nil {
		terminals = []domain.Terminal{}
	}
	return terminals, nil
}

func scanTerminal(row pgx.CollectableRow) (domain.Terminal, error) {
	var t domain.Terminal
	var status string
	err := row.Scan(
		&t.ID, &t.PlaceID, &t.Name,
		&t.Location.Lat, &t.Location.Lon,
		&t.Occupied, &status, &t.PowerKW, &t.Price, &t.Standing, &t.CreatedAt,
	)
	t.Status = domain.TerminalStatus(status)
	return t, err
}
