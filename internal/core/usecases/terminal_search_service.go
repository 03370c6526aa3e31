package usecases

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/core/ports"
	"github.com/samirrijal/ebcharge/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/ebcharge/internal/core/usecases")

// TerminalSearchService finds terminals matching every supplied criterion.
// It keeps no state between calls and is safe for concurrent use.
type TerminalSearchService struct {
	catalog  ports.TerminalCatalog
	bookings ports.BookingIndex
}

// NewTerminalSearchService creates a new TerminalSearchService.
func NewTerminalSearchService(catalog ports.TerminalCatalog, bookings ports.BookingIndex) *TerminalSearchService {
	return &TerminalSearchService{catalog: catalog, bookings: bookings}
}

// Search returns the terminals satisfying c. With a position they are ordered
// by distance then id; otherwise catalog order is kept. Storage failures are wrapped in
// domain.ErrCollaboratorUnavailable and no terminals are returned with them.
func (s *TerminalSearchService) Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Terminal, error) {
	ctx, span := tracer.Start(ctx, "TerminalSearchService.Search")
	defer span.End()
	span.SetAttributes(attribute.String("search.criteria", c.Key()))

	start := time.Now()
	result, err := s.search(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ObserveSearch("error", time.Since(start), 0)
		return nil, err
	}

	span.SetAttributes(attribute.Int("search.results", len(result)))
	metrics.ObserveSearch("ok", time.Since(start), len(result))
	return result, nil
}

func (s *TerminalSearchService) search(ctx context.Context, c domain.SearchCriteria) ([]domain.Terminal, error) {
	candidates, err := s.loadCandidates(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%w: load terminals: %w", domain.ErrCollaboratorUnavailable, err)
	}
	candidates = uniqueByID(candidates)

	// In-memory predicates first so bookings are only fetched when something survives.
	var inMemory []Predicate
	for _, p := range BuildPredicates(c, nil) {
		if p.Kind() != KindTemporal {
			inMemory = append(inMemory, p)
		}
	}
	survivors := ApplyPredicates(candidates, inMemory...)

	if window, ok := c.Window(); ok && len(survivors) > 0 {
		bookings, err := s.bookings.BlockingBookingsForWindow(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("%w: load bookings: %w", domain.ErrCollaboratorUnavailable, err)
		}
		survivors = ApplyPredicates(survivors, TemporalPredicate{Window: window, Bookings: bookings})
	}

	orderResults(survivors, c)
	return survivors, nil
}

// loadCandidates pushes a bounding box down to storage when it can; the geo
// predicate still runs on the result.
func (s *TerminalSearchService) loadCandidates(ctx context.Context, c domain.SearchCriteria) ([]domain.Terminal, error) {
	if center, radius, ok := c.Position(); ok {
		if bounded, ok := s.catalog.(ports.BoundedTerminalCatalog); ok {
			if box, ok := domain.BoundsAround(center, radius); ok {
				return bounded.TerminalsWithin(ctx, box)
			}
		}
	}
	return s.catalog.AllTerminals(ctx)
}

func uniqueByID(terminals []domain.Terminal) []domain.Terminal {
	seen := make(map[string]struct{}, len(terminals))
	out := make([]domain.Terminal, 0, len(terminals))
	for _, t := range terminals {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

func orderResults(terminals []domain.Terminal, c domain.SearchCriteria) {
	center, _, ok := c.Position()
	if !ok {
		return
	}

	for i := range terminals {
		d := domain.DistanceKm(terminals[i].Location, center)
		terminals[i].Distance = &d
	}
	sort.SliceStable(terminals, func(i, j int) bool {
		di, dj := *terminals[i].Distance, *terminals[j].Distance
		if di != dj {
			return di < dj
		}
		return terminals[i].ID < terminals[j].ID
	})
}
