package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists route paths that bypass authentication: infrastructure
// endpoints and the account endpoints that authenticate through the body.
var publicPaths = map[string]bool{
	"/health":                true,
	"/health/db":             true,
	"/metrics":               true,
	"/api/v1/users/register": true,
	"/api/v1/users/login":    true,
	"/api/v1/users/delete":   true,
}

// AuthSkipper returns true for requests whose route should skip
// authentication. Pass it to JWTMiddleware or DevAuthMiddleware.
func AuthSkipper(c echo.Context) bool {
	return IsPublicPath(c.Path())
}

// IsPublicPath reports whether the given route path bypasses auth.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}

// InfraSkipper is true only for the health and metrics endpoints, which need
// neither a caller nor a request-scoped database connection.
func InfraSkipper(c echo.Context) bool {
	switch c.Path() {
	case "/health", "/health/db", "/metrics":
		return true
	}
	return false
}
