package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths are infrastructure endpoints that bypass rate limiting and the
// session loader.
var publicPaths = map[string]bool{
	"/health":    true,
	"/health/db": true,
}

// PublicSkipper returns true for requests whose route is a public
// infrastructure endpoint.
func PublicSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether path is a public infrastructure endpoint.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
