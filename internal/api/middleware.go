package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"load-optimizer/internal/domain"
	"load-optimizer/internal/metrics"
)

// RequestSizeLimiter rejects bodies above maxBytes, declared or actual,
// before parsing.
func RequestSizeLimiter(maxBytes int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Request().Header.ContentLength() > maxBytes || len(c.Body()) > maxBytes {
			return writeError(c, fiber.StatusRequestEntityTooLarge, domain.CodePayloadTooLarge,
				"Request payload too large", map[string]any{"max_bytes": maxBytes})
		}
		return c.Next()
	}
}

// RateLimiter answers 429 once the token bucket is empty.
func RateLimiter(limiter *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "Rate limit exceeded")
		}
		return c.Next()
	}
}

// Metrics records request counts and latency by route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		labels := []string{c.Method(), c.Route().Path, strconv.Itoa(status)}
		metrics.HTTPRequests.WithLabelValues(labels...).Inc()
		metrics.HTTPDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
