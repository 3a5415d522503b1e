package middleware

import (
	"time"

	"arthemis/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records the count and latency of every request by route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = StatusOf(err)
		}
		metrics.RecordRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
