// Package pagination reads limit/offset query parameters for the admin list
// endpoints and shapes their paged responses.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Params struct {
	Limit  int
	Offset int
}

// FromContext reads `limit` and `offset`. Missing, malformed or
// non-positive limits fall back to DefaultLimit and anything above MaxLimit
// is capped. Bad offsets become 0.
func FromContext(c echo.Context) Params {
	return Params{
		Limit:  limitParam(c.QueryParam("limit")),
		Offset: offsetParam(c.QueryParam("offset")),
	}
}

func limitParam(raw string) int {
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil || n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

func offsetParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Response is the body of every paged admin list.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"hasMore"`
}

// NewResponse pages items, one window of a result set holding total rows.
// A nil slice is sent as [] so clients never see "data": null.
func NewResponse[T any](items []T, total int, p Params) *Response {
	if items == nil {
		items = []T{}
	}
	return &Response{
		Data:    items,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.Offset+len(items) < total,
	}
}
