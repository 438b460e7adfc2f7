// Package httperr converts unexpected failures into the generic 500 response
// every handler returns, logging the cause with the request-scoped logger.
package httperr

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Internal logs err against the request and returns a 500 carrying msg.
// Store and provider error text never reaches the client.
func Internal(c echo.Context, err error, msg string) error {
	zerolog.Ctx(c.Request().Context()).Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg(msg)
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}

// ParamID parses a positive integer path parameter. A malformed value is a
// 400 naming the parameter.
func ParamID(c echo.Context, name string) (int64, error) {
	id, ok := parsePositive(c.Param(name))
	if !ok {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func parsePositive(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, n > 0
}
