package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const maxHeaderValueSize = 8192

var (
	// Warned about, never blocked: every query is parameterized.
	sqlLike = regexp.MustCompile(`(?i)('+\s*;\s*DROP\b|UNION\s+SELECT\b|'\s+OR\s+1\s*=\s*1)`)

	scriptLike = regexp.MustCompile(`(?i)(<script|javascript\s*:|on\w+\s*=)`)
)

// pathCheck returns a rejection message for a request path, or "".
type pathCheck func(path string) string

var pathChecks = []pathCheck{
	func(p string) string {
		lower := strings.ToLower(p)
		if strings.Contains(p, "..") || strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e") {
			return "Path traversal detected"
		}
		return ""
	},
	func(p string) string {
		if hasNullByte(p) {
			return "Null byte injection detected"
		}
		return ""
	},
}

// Sanitize rejects requests with path traversal, null bytes, header
// injection or script payloads in query parameters. Doctor search terms
// and specialty filters are rendered back by the web client, so script
// payloads stop here.
func Sanitize(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			for _, p := range []string{req.URL.Path, req.URL.EscapedPath()} {
				for _, check := range pathChecks {
					if msg := check(p); msg != "" {
						return echo.NewHTTPError(http.StatusBadRequest, msg)
					}
				}
			}
			if msg := checkHeaders(req.Header); msg != "" {
				return echo.NewHTTPError(http.StatusBadRequest, msg)
			}

			for key, values := range req.URL.Query() {
				for _, v := range values {
					switch {
					case hasNullByte(key) || hasNullByte(v):
						return echo.NewHTTPError(http.StatusBadRequest, "Null byte injection detected in query parameter")
					case scriptLike.MatchString(key) || scriptLike.MatchString(v):
						return echo.NewHTTPError(http.StatusBadRequest, "Script injection detected in query parameter")
					case sqlLike.MatchString(v):
						requestLogger(c, &base).Warn().
							Str("param", key).
							Str("path", req.URL.Path).
							Str("remote_ip", c.RealIP()).
							Msg("suspicious SQL pattern in query parameter")
					}
				}
			}
			return next(c)
		}
	}
}

func checkHeaders(h http.Header) string {
	for name, values := range h {
		for _, v := range values {
			if len(v) > maxHeaderValueSize {
				return "Header value exceeds maximum size: " + name
			}
			if strings.ContainsAny(v, "\r\n") {
				return "Header injection detected: " + name
			}
		}
	}
	return ""
}

func hasNullByte(s string) bool {
	return strings.ContainsRune(s, 0) || strings.Contains(strings.ToLower(s), "%00")
}
