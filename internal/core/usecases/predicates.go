package usecases

import (
	"github.com/samirrijal/ebcharge/internal/core/domain"
)

// PredicateKind tags a search predicate variant.
type PredicateKind string

const (
	KindOccupancy PredicateKind = "occupancy"
	KindStatus    PredicateKind = "status"
	KindGeo       PredicateKind = "geo"
	KindTemporal  PredicateKind = "temporal"
)

// Predicate decides membership of a single terminal. Predicates never look
// at other terminals, so any application order yields the same set.
type Predicate interface {
	Kind() PredicateKind
	Keep(t domain.Terminal) bool
}

// OccupancyPredicate keeps terminals whose occupied flag equals Occupied.
type OccupancyPredicate struct {
	Occupied bool
}

func (p OccupancyPredicate) Kind() PredicateKind { return KindOccupancy }

func (p OccupancyPredicate) Keep(t domain.Terminal) bool { return t.Occupied == p.Occupied }

// StatusPredicate keeps terminals in one of the listed statuses.
type StatusPredicate struct {
	Statuses []domain.TerminalStatus
}

func (p StatusPredicate) Kind() PredicateKind { return KindStatus }

func (p StatusPredicate) Keep(t domain.Terminal) bool {
	for _, s := range p.Statuses {
		if t.Status == s {
			return true
		}
	}
	return false
}

// GeoPredicate keeps terminals within RadiusKm of Center, boundary included.
type GeoPredicate struct {
	Center   domain.GeoPoint
	RadiusKm float64
}

func (p GeoPredicate) Kind() PredicateKind { return KindGeo }

func (p GeoPredicate) Keep(t domain.Terminal) bool {
	return domain.DistanceKm(t.Location, p.Center) <= p.RadiusKm
}

// TemporalPredicate keeps terminals with no blocking booking overlapping
// Window. Bookings is keyed by terminal id; a terminal with no entry passes.
type TemporalPredicate struct {
	Window   domain.TimeWindow
	Bookings map[string][]domain.BookingInterval
}

func (p TemporalPredicate) Kind() PredicateKind { return KindTemporal }

func (p TemporalPredicate) Keep(t domain.Terminal) bool {
	for _, b := range p.Bookings[t.ID] {
		if !b.Status.Blocking() {
			continue
		}
		if p.Window.Overlaps(domain.TimeWindow{Start: b.Start, End: b.End}) {
			return false
		}
	}
	return true
}

// BuildPredicates returns one predicate per criterion present in c, cheapest
// first. bookings feeds the temporal predicate and is ignored without a window.
func BuildPredicates(c domain.SearchCriteria, bookings map[string][]domain.BookingInterval) []Predicate {
	var preds []Predicate
	if occupied, ok := c.Occupied(); ok {
		preds = append(preds, OccupancyPredicate{Occupied: occupied})
	}
	if statuses := c.Statuses(); len(statuses) > 0 {
		preds = append(preds, StatusPredicate{Statuses: statuses})
	}
	if center, radius, ok := c.Position(); ok {
		preds = append(preds, GeoPredicate{Center: center, RadiusKm: radius})
	}
	if window, ok := c.Window(); ok {
		preds = append(preds, TemporalPredicate{Window: window, Bookings: bookings})
	}
	return preds
}

// ApplyPredicates returns the terminals kept by every predicate, preserving
// input order. The input slice is not modified.
func ApplyPredicates(terminals []domain.Terminal, preds ...Predicate) []domain.Terminal {
	out := make([]domain.Terminal, 0, len(terminals))
	for _, t := range terminals {
		if keepAll(t, preds) {
			out = append(out, t)
		}
	}
	return out
}

func keepAll(t domain.Terminal, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Keep(t) {
			return false
		}
	}
	return true
}
