package middleware

import (
	"strconv"
	"time"

	"storefront/internal/metrics"

	"github.com/labstack/echo/v4"
)

// HTTPメトリクスを記録する。path はルートのパターン（/orders/:id）でまとめる
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			metrics.HTTPInFlight.Inc()
			defer metrics.HTTPInFlight.Dec()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			metrics.HTTPRequests.WithLabelValues(method, path, status).Inc()
			metrics.HTTPDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
