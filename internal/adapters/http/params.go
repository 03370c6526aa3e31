package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/ebcharge/internal/core/domain"
)

// searchParamNames maps search inputs to query parameter names.
type searchParamNames struct {
	Lat, Lon, Radius, Occupied, Start, End, Status string
}

var (
	searchNames = searchParamNames{
		Lat: "lat", Lon: "lon", Radius: "radius_km", Occupied: "occupied",
		Start: "start", End: "end", Status: "status",
	}
	legacySearchNames = searchParamNames{
		Lat: "latitude", Lon: "longitude", Radius: "radius", Occupied: "occupied",
		Start: "startingDate", End: "endingDate",
	}
)

// Accepted time layouts. Zone-less values are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected RFC 3339", raw)
}

// parseSearchCriteria reads the query string into validated criteria. Parse
// and validation problems are reported together as a *domain.CriteriaError.
func parseSearchCriteria(c *fiber.Ctx, names searchParamNames, maxRadiusKm float64) (domain.SearchCriteria, error) {
	var (
		p        domain.SearchParams
		problems []string
	)

	float := func(name string) *float64 {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be a number", name))
			return nil
		}
		return &v
	}
	timestamp := func(name string) *time.Time {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil
		}
		t, err := parseTime(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			return nil
		}
		return &t
	}

	p.Lat = float(names.Lat)
	p.Lon = float(names.Lon)
	p.RadiusKm = float(names.Radius)
	p.Start = timestamp(names.Start)
	p.End = timestamp(names.End)

	if raw := strings.TrimSpace(c.Query(names.Occupied)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be true or false", names.Occupied))
		} else {
			p.Occupied = &v
		}
	}

	if names.Status != "" {
		for _, s := range strings.Split(c.Query(names.Status), ",") {
			if s = strings.TrimSpace(s); s != "" {
				p.Statuses = append(p.Statuses, domain.TerminalStatus(strings.ToLower(s)))
			}
		}
	}

	if maxRadiusKm > 0 && p.RadiusKm != nil && *p.RadiusKm > maxRadiusKm {
		problems = append(problems, fmt.Sprintf("%s must not exceed %g km", names.Radius, maxRadiusKm))
	}

	if len(problems) > 0 {
		return domain.SearchCriteria{}, &domain.CriteriaError{Problems: problems}
	}
	return domain.NewSearchCriteria(p)
}

// parseWindow reads an optional start/end pair.
func parseWindow(c *fiber.Ctx) (*domain.TimeWindow, error) {
	rawStart, rawEnd := c.Query("start"), c.Query("end")
	if rawStart == "" && rawEnd == "" {
		return nil, nil
	}
	if rawStart == "" || rawEnd == "" {
		return nil, &domain.CriteriaError{Problems: []string{"start and end must be supplied together"}}
	}
	start, err := parseTime(rawStart)
	if err != nil {
		return nil, &domain.CriteriaError{Problems: []string{"start: " + err.Error()}}
	}
	end, err := parseTime(rawEnd)
	if err != nil {
		return nil, &domain.CriteriaError{Problems: []string{"end: " + err.Error()}}
	}
	if !start.Before(end) {
		return nil, &domain.CriteriaError{Problems: []string{"start must be before end"}}
	}
	return &domain.TimeWindow{Start: start.UTC(), End: end.UTC()}, nil
}

// paginate clamps offset/limit query parameters and slices items.
func paginate[T any](c *fiber.Ctx, items []T, defaultLimit, maxLimit int) ([]T, Pagination) {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", defaultLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	total := len(items)
	page := []T{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = items[offset:end]
	}
	return page, Pagination{Offset: offset, Limit: limit, Total: total}
}
