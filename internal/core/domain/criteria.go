package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/ebcharge/internal/pkg/interval"
)

// TimeWindow is the half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether w and other share any instant.
// Windows that only touch at an endpoint do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return interval.Overlaps(w.Start, w.End, other.Start, other.End)
}

// SearchParams carries raw, independently optional search inputs.
// Nil means "not supplied".
type SearchParams struct {
	Lat      *float64
	Lon      *float64
	RadiusKm *float64
	Occupied *bool
	Start    *time.Time
	End      *time.Time
	Statuses []TerminalStatus
}

// SearchCriteria is a validated, immutable set of terminal search criteria.
// The zero value carries no criteria and matches every terminal.
type SearchCriteria struct {
	position *GeoPoint
	radiusKm float64
	occupied *bool
	window   *TimeWindow
	statuses []TerminalStatus
}

// NewSearchCriteria validates p and builds the criteria. Every problem is
// reported at once in a *CriteriaError.
func NewSearchCriteria(p SearchParams) (SearchCriteria, error) {
	var c SearchCriteria
	var problems []string

	switch {
	case p.Lat == nil && p.Lon == nil && p.RadiusKm == nil:
	case p.Lat == nil || p.Lon == nil || p.RadiusKm == nil:
		problems = append(problems, "latitude, longitude and radius must be supplied together")
	default:
		pt := GeoPoint{Lat: *p.Lat, Lon: *p.Lon}
		if err := pt.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
		r := *p.RadiusKm
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			problems = append(problems, fmt.Sprintf("radius must be a positive number of kilometres, got %v", r))
		}
		c.position = &pt
		c.radiusKm = r
	}

	if p.Occupied != nil {
		v := *p.Occupied
		c.occupied = &v
	}

	switch {
	case p.Start == nil && p.End == nil:
	case p.Start == nil || p.End == nil:
		problems = append(problems, "start and end must be supplied together")
	case !p.Start.Before(*p.End):
		problems = append(problems, "start must be before end")
	default:
		c.window = &TimeWindow{Start: p.Start.UTC(), End: p.End.UTC()}
	}

	if len(p.Statuses) > 0 {
		seen := make(map[TerminalStatus]bool, len(p.Statuses))
		for _, s := range p.Statuses {
			if !s.Valid() {
				problems = append(problems, fmt.Sprintf("unknown terminal status %q", s))
				continue
			}
			if !seen[s] {
				seen[s] = true
				c.statuses = append(c.statuses, s)
			}
		}
		sort.Slice(c.statuses, func(i, j int) bool { return c.statuses[i] < c.statuses[j] })
	}

	if len(problems) > 0 {
		return SearchCriteria{}, &CriteriaError{Problems: problems}
	}
	return c, nil
}

// Position returns the search centre and radius in km, if supplied.
func (c SearchCriteria) Position() (GeoPoint, float64, bool) {
	if c.position == nil {
		return GeoPoint{}, 0, false
	}
	return *c.position, c.radiusKm, true
}

// Occupied returns the requested occupied flag, if supplied.
func (c SearchCriteria) Occupied() (bool, bool) {
	if c.occupied == nil {
		return false, false
	}
	return *c.occupied, true
}

// Window returns the requested time window, if supplied.
func (c SearchCriteria) Window() (TimeWindow, bool) {
	if c.window == nil {
		return TimeWindow{}, false
	}
	return *c.window, true
}

// Statuses returns the accepted terminal statuses; empty means any.
func (c SearchCriteria) Statuses() []TerminalStatus {
	out := make([]TerminalStatus, len(c.statuses))
	copy(out, c.statuses)
	return out
}

// IsEmpty reports whether no criterion was supplied.
func (c SearchCriteria) IsEmpty() bool {
	return c.position == nil && c.occupied == nil && c.window == nil && len(c.statuses) == 0
}

// Key renders the criteria canonically, e.g. for logs and trace attributes.
func (c SearchCriteria) Key() string {
	var parts []string
	if c.position != nil {
		parts = append(parts,
			"lat="+strconv.FormatFloat(c.position.Lat, 'f', 6, 64),
			"lon="+strconv.FormatFloat(c.position.Lon, 'f', 6, 64),
			"radius_km="+strconv.FormatFloat(c.radiusKm, 'f', -1, 64),
		)
	}
	if c.occupied != nil {
		parts = append(parts, "occupied="+strconv.FormatBool(*c.occupied))
	}
	if c.window != nil {
		parts = append(parts,
			"start="+c.window.Start.Format(time.RFC3339),
			"end="+c.window.End.Format(time.RFC3339),
		)
	}
	if len(c.statuses) > 0 {
		ss := make([]string, len(c.statuses))
		for i, s := range c.statuses {
			ss[i] = string(s)
		}
		parts = append(parts, "status="+strings.Join(ss, ","))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ";")
}
