package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequirePrivilege returns middleware that lets the request through only when
// the caller's privilege tier is at least required.
func RequirePrivilege(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			current := PrivilegesFromContext(c.Request().Context())
			if !HasPrivilege(current, required) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient privileges")
			}
			return next(c)
		}
	}
}

// RequireRoleCluster returns middleware that checks the caller's role against
// cluster. name only labels the gate in the request context for logging.
func RequireRoleCluster(name string, cluster Cluster) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if PrivilegesFromContext(ctx) == PrivilegeOverseer || InCluster(RoleFromContext(ctx), cluster) {
				return next(c)
			}
			c.Set("denied_cluster", name)
			return echo.NewHTTPError(http.StatusForbidden, "role not permitted")
		}
	}
}

// Authenticated rejects requests that carry no caller identity.
func Authenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFromContext(c.Request().Context()); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}
