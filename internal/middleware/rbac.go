package middleware

import (
	"net/http"

	"ubuxa-console/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireRole restricts a route to operators holding the given role.
// Inviting new operators is owner-only.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if _, ok := common.GetAdminIDFromContext(ctx); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			current, ok := common.GetAdminRoleFromContext(ctx)
			if !ok || current != role {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
