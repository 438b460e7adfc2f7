package doctor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Range is an inclusive numeric bound. Either end may be open.
type Range struct {
	Min *float64
	Max *float64
}

func (r Range) IsZero() bool { return r.Min == nil && r.Max == nil }

// ErrInvalidFilter wraps malformed query filters.
var ErrInvalidFilter = errors.New("invalid filter")

// ParseRange parses a "min,max" pair such as "5,10". Either side may be
// empty ("5," or ",10"). An empty string is an open range.
func ParseRange(name, s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("%w: %s must be a min,max pair", ErrInvalidFilter, name)
	}
	var r Range
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return Range{}, fmt.Errorf("%w: %s must be a min,max pair", ErrInvalidFilter, name)
		}
		if i == 0 {
			r.Min = &v
		} else {
			r.Max = &v
		}
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return Range{}, fmt.Errorf("%w: %s minimum exceeds maximum", ErrInvalidFilter, name)
	}
	return r, nil
}

// FilterFromQuery reads the doctor listing query parameters.
func FilterFromQuery(c echo.Context) (Filter, error) {
	f := Filter{
		Specialty:    strings.TrimSpace(c.QueryParam("specialty")),
		Location:     strings.TrimSpace(c.QueryParam("location")),
		Availability: strings.TrimSpace(c.QueryParam("availability")),
		Gender:       strings.TrimSpace(c.QueryParam("gender")),
		Language:     strings.TrimSpace(c.QueryParam("language")),
	}
	var err error
	if f.Experience, err = ParseRange("experience", c.QueryParam("experience")); err != nil {
		return Filter{}, err
	}
	if f.Fee, err = ParseRange("fee", c.QueryParam("fee")); err != nil {
		return Filter{}, err
	}
	if raw := strings.TrimSpace(c.QueryParam("rating")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 5 {
			return Filter{}, fmt.Errorf("%w: rating must be a number between 0 and 5", ErrInvalidFilter)
		}
		f.MinRating = &v
	}
	return f, nil
}
