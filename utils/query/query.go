package query

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

var ErrInvalidDate = errors.New("invalid date")

// Page holds page/limit pagination parameters
type Page struct {
	Page  int
	Limit int
}

// Offset returns the row offset of the page
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination reads page and limit query parameters, clamping limit to [1, 100]
func Pagination(c *fiber.Ctx, defaultLimit int) Page {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return Page{Page: page, Limit: Limit(c, defaultLimit, 100)}
}

// Limit reads the limit query parameter, falling back to def and capping at max
func Limit(c *fiber.Ctx, def, max int) int {
	limit := c.QueryInt("limit", def)
	if limit < 1 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}

// UintParam parses a positive integer path parameter
func UintParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}

// OptionalUint parses an optional positive integer query parameter
func OptionalUint(c *fiber.Ctx, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, errors.New("invalid " + name)
	}
	v := uint(id)
	return &v, nil
}

// Bool reports whether the query parameter equals "true"
func Bool(c *fiber.Ctx, name string) bool {
	return c.Query(name) == "true"
}

// DateRange parses optional startDate and endDate query parameters.
// Dates may be RFC 3339 timestamps or YYYY-MM-DD; a bare end date covers the whole day.
func DateRange(c *fiber.Ctx) (start, end *time.Time, err error) {
	if raw := c.Query("startDate"); raw != "" {
		t, _, perr := parseDate(raw)
		if perr != nil {
			return nil, nil, perr
		}
		start = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, dateOnly, perr := parseDate(raw)
		if perr != nil {
			return nil, nil, perr
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = &t
	}
	return start, end, nil
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, ErrInvalidDate
}
