package middleware

import (
	"log"
	"net/http"
	"time"

	"ubuxa-console/internal/common"

	"github.com/labstack/echo/v4"
)

// ActionLog records mutating console requests with the acting operator.
// Lifecycle transitions are the requests that matter for traceability;
// reads are left to the access log.
func ActionLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return err
			}

			actor := "anonymous"
			if adminID, ok := common.GetAdminIDFromContext(c.Request().Context()); ok {
				actor = adminID.String()
			}

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			log.Printf("[ACTION] admin=%s %s %s status=%d took=%s",
				actor, method, c.Request().URL.Path, status, time.Since(start))
			return err
		}
	}
}
