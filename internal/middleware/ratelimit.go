package middleware

import (
	"log"
	"net/http"
	"time"

	"ubuxa-console/internal/caching"

	"github.com/labstack/echo/v4"
)

// RateLimit throttles a route per client IP using the shared Redis
// counter. Applied to the public demo-request form, which is the only
// unauthenticated write surface.
func RateLimit(cacheSvc caching.CacheService, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			ctx := c.Request().Context()

			// The increment and the check are one Redis operation, so
			// concurrent requests each see their own counter value and
			// cannot slip past the limit together.
			count, err := cacheSvc.IncrementRateLimit(ctx, key, window)
			if err != nil {
				// Redis trouble should not take the form down.
				log.Printf("Rate limit check failed for %s: %v", key, err)
				return next(c)
			}
			if count > int64(limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, try again later")
			}
			return next(c)
		}
	}
}
