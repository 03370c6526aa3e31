package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

// PlaceRecord is a place and its terminals keyed by source references.
type PlaceRecord struct {
	Ref       string
	Place     domain.Place
	Terminals []TerminalRecord
}

type TerminalRecord struct {
	Ref      string
	Terminal domain.Terminal
}

// CatalogWriter loads places and terminals into the catalog.
type CatalogWriter struct {
	db *DB
}

func NewCatalogWriter(db *DB) *CatalogWriter {
	return &CatalogWriter{db: db}
}

const upsertPlaceSQL = `
	INSERT INTO places (ref, name, instructions, location)
	VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography)
	ON CONFLICT (ref) DO UPDATE
	SET name = EXCLUDED.name, instructions = EXCLUDED.instructions, location = EXCLUDED.location
	RETURNING id`

// The occupied flag belongs to the scheduler: an existing row keeps it, and
// an occupied terminal brought back to "available" stays "occupied".
const upsertTerminalSQL = `
	INSERT INTO terminals (ref, place_id, name, location, power_kw, price, standing, status)
	VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6, $7, $8, $9)
	ON CONFLICT (ref) DO UPDATE
	SET place_id = EXCLUDED.place_id, name = EXCLUDED.name, location = EXCLUDED.location,
	    power_kw = EXCLUDED.power_kw, price = EXCLUDED.price, standing = EXCLUDED.standing,
	    status = CASE
	        WHEN EXCLUDED.status = 'available' AND terminals.occupied THEN 'occupied'
	        ELSE EXCLUDED.status
	    END`

// Upsert writes places and their terminals in a single transaction and
// returns the number of terminals written.
func (w *CatalogWriter) Upsert(ctx context.Context, places []PlaceRecord) (int, error) {
	total := 0
	err := pgx.BeginFunc(ctx, w.db.Pool, func(tx pgx.Tx) error {
		for _, p := range places {
			var placeID string
			loc := p.Place.Location
			if err := tx.QueryRow(ctx, upsertPlaceSQL,
				p.Ref, p.Place.Name, nilEmpty(p.Place.Instructions), loc.Lon, loc.Lat,
			).Scan(&placeID); err != nil {
				return fmt.Errorf("upsert place %s: %w", p.Ref, err)
			}

			if len(p.Terminals) == 0 {
				continue
			}
			batch := &pgx.Batch{}
			for _, tr := range p.Terminals {
				t := tr.Terminal
				batch.Queue(upsertTerminalSQL,
					tr.Ref, placeID, t.Name, t.Location.Lon, t.Location.Lat,
					t.PowerKW, t.Price, t.Standing, string(t.Status),
				)
			}
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("upsert terminals of %s: %w", p.Ref, err)
			}
			total += len(p.Terminals)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
