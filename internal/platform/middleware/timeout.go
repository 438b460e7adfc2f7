package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout puts a deadline on the request context. Store and payment
// provider calls give up when it passes. The handler runs on the calling
// goroutine, so a panic still unwinds into Recovery and the echo context is
// never used after this middleware returns.
//
// When the deadline has passed by the time the handler returns and nothing
// was written yet, the client gets a 504 instead of whatever error the
// aborted call produced.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Response().Committed {
				return err
			}
			return c.JSON(http.StatusGatewayTimeout, map[string]string{
				"message": "Request timed out",
			})
		}
	}
}
