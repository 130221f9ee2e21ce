package middleware

import (
	"context"
	"net/http"
	"strings"

	"ubuxa-console/internal/common"
	"ubuxa-console/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates the Bearer token on console routes. Tokens
// revoked through logout are rejected via the blacklist check inside
// AuthService.ValidateToken.
func JWTMiddleware(authService services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			claims, err := authService.ValidateToken(c.Request().Context(), tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			adminID, err := uuid.Parse(claims.AdminID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid admin_id in token")
			}

			ctx := context.WithValue(c.Request().Context(), common.AdminIDKey, adminID)
			ctx = context.WithValue(ctx, common.AdminRoleKey, claims.Role)
			ctx = context.WithValue(ctx, common.TokenKey, claims)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetTokenClaims returns the validated claims stored by JWTMiddleware.
func GetTokenClaims(ctx context.Context) (*services.TokenClaims, bool) {
	claims, ok := ctx.Value(common.TokenKey).(*services.TokenClaims)
	return claims, ok
}
