package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"dojohub/internal/metrics"
)

// Metrics records request count, latency and in-flight gauge per route.
// The route template is used as the path label to keep cardinality bounded.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			done := metrics.RequestStarted()
			defer done()

			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			metrics.ObserveHTTP(c.Request().Method, path, responseStatus(c, err), time.Since(start))
			return err
		}
	}
}
