package usecases_test

import (
	"reflect"
	"testing"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/core/usecases"
)

func permutations(preds []usecases.Predicate) [][]usecases.Predicate {
	if len(preds) <= 1 {
		return [][]usecases.Predicate{append([]usecases.Predicate(nil), preds...)}
	}
	var out [][]usecases.Predicate
	for i := range preds {
		rest := make([]usecases.Predicate, 0, len(preds)-1)
		rest = append(rest, preds[:i]...)
		rest = append(rest, preds[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]usecases.Predicate{preds[i]}, p...))
		}
	}
	return out
}

func TestApplyPredicates_Commutative(t *testing.T) {
	terminals := []domain.Terminal{
		{ID: "a", Location: domain.GeoPoint{Lat: 48.85, Lon: 2.35}, Status: domain.TerminalAvailable},
		{ID: "b", Location: domain.GeoPoint{Lat: 48.86, Lon: 2.36}, Occupied: true, Status: domain.TerminalOccupied},
		{ID: "c", Location: domain.GeoPoint{Lat: 48.84, Lon: 2.34}, Status: domain.TerminalAvailable},
		{ID: "d", Location: domain.GeoPoint{Lat: 45.75, Lon: 4.85}, Status: domain.TerminalAvailable},
		{ID: "e", Location: domain.GeoPoint{Lat: 48.85, Lon: 2.351}, Status: domain.TerminalUnderRepair},
	}
	window := domain.TimeWindow{Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T12:00:00Z")}
	bookings := map[string][]domain.BookingInterval{
		"c": {{TerminalID: "c", Start: at("2024-01-01T11:00:00Z"), End: at("2024-01-01T11:30:00Z"), Status: domain.BookingAccepted}},
		"e": {{TerminalID: "e", Start: at("2024-01-01T09:00:00Z"), End: at("2024-01-01T10:00:00Z"), Status: domain.BookingAccepted}},
	}

	preds := []usecases.Predicate{
		usecases.OccupancyPredicate{Occupied: false},
		usecases.GeoPredicate{Center: domain.GeoPoint{Lat: 48.85, Lon: 2.35}, RadiusKm: 5},
		usecases.TemporalPredicate{Window: window, Bookings: bookings},
		usecases.StatusPredicate{Statuses: []domain.TerminalStatus{domain.TerminalAvailable, domain.TerminalUnderRepair}},
	}

	want := []string{"a", "e"}
	orders := permutations(preds)
	if len(orders) != 24 {
		t.Fatalf("expected 24 orderings, got %d", len(orders))
	}
	for _, order := range orders {
		// Apply one predicate at a time, as a pipeline would.
		got := terminals
		for _, p := range order {
			got = usecases.ApplyPredicates(got, p)
		}
		if !reflect.DeepEqual(ids(got), want) {
			kinds := make([]usecases.PredicateKind, len(order))
			for i, p := range order {
				kinds[i] = p.Kind()
			}
			t.Errorf("order %v: expected %v, got %v", kinds, want, ids(got))
		}
	}
}

func TestApplyPredicates_DoesNotModifyInput(t *testing.T) {
	in := []domain.Terminal{{ID: "a", Occupied: true}, {ID: "b"}}
	out := usecases.ApplyPredicates(in, usecases.OccupancyPredicate{Occupied: false})
	if len(in) != 2 || in[0].ID != "a" || in[1].ID != "b" {
		t.Errorf("input modified: %v", ids(in))
	}
	if !reflect.DeepEqual(ids(out), []string{"b"}) {
		t.Errorf("expected [b], got %v", ids(out))
	}
}

func TestGeoPredicate_BoundaryInclusive(t *testing.T) {
	center := domain.GeoPoint{Lat: 48.85, Lon: 2.35}
	target := domain.Terminal{ID: "x", Location: domain.GeoPoint{Lat: 48.90, Lon: 2.35}}
	d := domain.DistanceKm(target.Location, center)

	if !(usecases.GeoPredicate{Center: center, RadiusKm: d}).Keep(target) {
		t.Error("terminal exactly at the radius must be kept")
	}
	if (usecases.GeoPredicate{Center: center, RadiusKm: d * 0.999}).Keep(target) {
		t.Error("terminal beyond the radius must be dropped")
	}
}

func TestTemporalPredicate_NoBookingsPasses(t *testing.T) {
	p := usecases.TemporalPredicate{
		Window: domain.TimeWindow{Start: at("2024-01-01T10:00:00Z"), End: at("2024-01-01T12:00:00Z")},
	}
	if !p.Keep(domain.Terminal{ID: "free"}) {
		t.Error("terminal without bookings must pass")
	}
}

func TestBuildPredicates(t *testing.T) {
	c := mustCriteria(t, domain.SearchParams{
		Lat: ptr(1.0), Lon: ptr(1.0), RadiusKm: ptr(1.0),
		Occupied: ptr(true),
		Start:    ptr(at("2024-01-01T10:00:00Z")),
		End:      ptr(at("2024-01-01T12:00:00Z")),
		Statuses: []domain.TerminalStatus{domain.TerminalBroken},
	})
	var kinds []usecases.PredicateKind
	for _, p := range usecases.BuildPredicates(c, nil) {
		kinds = append(kinds, p.Kind())
	}
	want := []usecases.PredicateKind{usecases.KindOccupancy, usecases.KindStatus, usecases.KindGeo, usecases.KindTemporal}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("expected %v, got %v", want, kinds)
	}

	if preds := usecases.BuildPredicates(domain.SearchCriteria{}, nil); len(preds) != 0 {
		t.Errorf("expected no predicates for empty criteria, got %d", len(preds))
	}
}
