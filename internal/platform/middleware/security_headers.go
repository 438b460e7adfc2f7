package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders sets browser hardening headers. The API serves JSON only,
// so the content security policy denies everything. HSTS is sent only when
// hsts is set, which the server does in production behind TLS; a dev
// browser pinning localhost to https is hard to undo.
//
// Responses under /api carry appointment, lab and medical record data and
// are marked no-store. Health checks stay cacheable by proxies.
func SecurityHeaders(hsts bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			// Video calls run in the client's embedded SDK, never on this origin.
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")
			if hsts {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				h.Set("Cache-Control", "no-store")
			}

			return next(c)
		}
	}
}
