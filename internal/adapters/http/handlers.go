package http

import (
	"github.com/gofiber/fiber/v2"
)

// SearchTerminalsHandler returns the terminals matching every supplied criterion.
// GET /v1/terminals/search?lat=48.85&lon=2.35&radius_km=5&occupied=false&start=...&end=...
func SearchTerminalsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria, err := parseSearchCriteria(c, searchNames, deps.MaxRadiusKm)
		if err != nil {
			return errFromDomain(c, err)
		}

		terminals, err := deps.Search.Search(c.UserContext(), criteria)
		if err != nil {
			return errFromDomain(c, err)
		}

		page, pg := paginate(c, terminals, 50, 200)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// LegacySearchTerminalsHandler serves the original parameter names and
// returns a bare array.
// GET /v1/search-terminals?latitude=48.85&longitude=2.35&radius=5&startingDate=...&endingDate=...
func LegacySearchTerminalsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria, err := parseSearchCriteria(c, legacySearchNames, deps.MaxRadiusKm)
		if err != nil {
			return errFromDomain(c, err)
		}

		terminals, err := deps.Search.Search(c.UserContext(), criteria)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(terminals)
	}
}

// GetTerminalHandler returns a single terminal by ID.
func GetTerminalHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "terminal id is required")
		}
		terminal, err := deps.Terminals.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(terminal)
	}
}

// TerminalBookingsHandler lists the slots held on a terminal, optionally
// restricted to those overlapping [start, end).
func TerminalBookingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "terminal id is required")
		}
		window, err := parseWindow(c)
		if err != nil {
			return errFromDomain(c, err)
		}

		bookings, err := deps.Terminals.Bookings(c.UserContext(), id, window)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"terminal_id": id,
			"bookings":    bookings,
		})
	}
}
