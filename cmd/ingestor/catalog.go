package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samirrijal/ebcharge/internal/adapters/postgres"
	"github.com/samirrijal/ebcharge/internal/core/domain"
)

var requiredColumns = []string{"place_ref", "place_name", "terminal_ref", "terminal_name", "lat", "lon"}

// parseCatalog reads a terminals CSV, one row per terminal, grouped into
// places in order of first appearance. References are prefixed with prefix.
// Rows that fail validation are skipped and described in problems.
func parseCatalog(r io.Reader, prefix string) ([]postgres.PlaceRecord, []string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	var (
		places   []postgres.PlaceRecord
		byRef    = map[string]int{}
		seen     = map[string]bool{}
		problems []string
	)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		row, rowProblems := parseRow(record, cols)
		if len(rowProblems) > 0 {
			problems = append(problems, fmt.Sprintf("line %d: %s", line, strings.Join(rowProblems, "; ")))
			continue
		}

		terminalRef := prefix + ":" + row.terminalRef
		if seen[terminalRef] {
			problems = append(problems, fmt.Sprintf("line %d: duplicate terminal_ref %q", line, row.terminalRef))
			continue
		}
		seen[terminalRef] = true

		placeRef := prefix + ":" + row.placeRef
		i, ok := byRef[placeRef]
		if !ok {
			i = len(places)
			byRef[placeRef] = i
			places = append(places, postgres.PlaceRecord{
				Ref: placeRef,
				Place: domain.Place{
					Name:         row.placeName,
					Instructions: row.instructions,
					Location:     row.location,
				},
			})
		}
		places[i].Terminals = append(places[i].Terminals, postgres.TerminalRecord{
			Ref: terminalRef,
			Terminal: domain.Terminal{
				Name:     row.terminalName,
				Location: row.location,
				Status:   row.status,
				PowerKW:  row.powerKW,
				Price:    row.price,
				Standing: row.standing,
			},
		})
	}

	return places, problems, nil
}

type catalogRow struct {
	placeRef, placeName, instructions string
	terminalRef, terminalName         string
	location                          domain.GeoPoint
	status                            domain.TerminalStatus
	powerKW, price                    float64
	standing                          bool
}

func parseRow(record []string, cols map[string]int) (catalogRow, []string) {
	var (
		row      catalogRow
		problems []string
	)

	text := func(name string, required bool) string {
		v := getField(record, cols, name)
		if required && v == "" {
			problems = append(problems, name+" is required")
		}
		return v
	}
	number := func(name string, required bool) float64 {
		v := getField(record, cols, name)
		if v == "" {
			if required {
				problems = append(problems, name+" is required")
			}
			return 0
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			problems = append(problems, name+" must be a number")
		}
		return f
	}

	row.placeRef = text("place_ref", true)
	row.placeName = text("place_name", true)
	row.instructions = text("instructions", false)
	row.terminalRef = text("terminal_ref", true)
	row.terminalName = text("terminal_name", true)
	row.location = domain.GeoPoint{Lat: number("lat", true), Lon: number("lon", true)}
	row.powerKW = number("power_kw", false)
	row.price = number("price", false)

	if len(problems) == 0 {
		if err := row.location.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if row.powerKW < 0 || row.price < 0 {
		problems = append(problems, "power_kw and price must not be negative")
	}

	if v := getField(record, cols, "standing"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			problems = append(problems, "standing must be true or false")
		}
		row.standing = b
	}

	row.status = domain.TerminalAvailable
	if v := getField(record, cols, "status"); v != "" {
		row.status = domain.TerminalStatus(strings.ToLower(v))
		switch {
		case !row.status.Valid():
			problems = append(problems, fmt.Sprintf("unknown status %q", v))
		case row.status == domain.TerminalOccupied:
			problems = append(problems, "status occupied is set by bookings, not imported")
		}
	}

	return row, problems
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		// Strip BOM from first column
		h = strings.TrimPrefix(h, "\xef\xbb\xbf")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func getField(record []string, cols map[string]int, name string) string {
	if idx, ok := cols[name]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
