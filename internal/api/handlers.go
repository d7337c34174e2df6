package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"load-optimizer/internal/domain"
	"load-optimizer/internal/metrics"
	"load-optimizer/internal/service"
)

func SetupRoutes(app *fiber.App, optimizerService *service.OptimizerService, limiter *rate.Limiter) {
	app.Get("/", RootHandler)
	app.Get("/health", HealthCheckHandler(optimizerService))
	app.Get("/healthz", HealthCheckHandler(optimizerService))
	app.Get("/actuator/health", HealthCheckHandler(optimizerService))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := app.Group("/api/v1")
	loadOptimizer := v1.Group("/load-optimizer", RateLimiter(limiter))
	loadOptimizer.Post("/optimize", OptimizeHandler(optimizerService))
	loadOptimizer.Post("/validate", ValidateHandler(optimizerService))
}

func RootHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "SmartLoad Optimization API",
		"version": "1.0.0",
		"endpoints": fiber.Map{
			"POST /api/v1/load-optimizer/optimize": "Optimize truck load",
			"POST /api/v1/load-optimizer/validate": "Check whether orders can share a truck",
			"GET /health":                          "Health check",
			"GET /metrics":                         "Prometheus metrics",
		},
	})
}

func HealthCheckHandler(optimizerService *service.OptimizerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(optimizerService.HealthCheck())
	}
}

func OptimizeHandler(optimizerService *service.OptimizerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var request domain.OptimizeRequest
		if err := c.BodyParser(&request); err != nil {
			return writeError(c, fiber.StatusBadRequest, domain.CodeInvalidInput, "Invalid JSON format",
				map[string]any{"errors": err.Error()})
		}

		response, err := optimizerService.OptimizeLoad(requestContext(c), request)
		if err != nil {
			return writeServiceError(c, err, optimizerService.MaxOrders())
		}

		return c.Status(fiber.StatusOK).JSON(response)
	}
}

func ValidateHandler(optimizerService *service.OptimizerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var request domain.ValidateRequest
		if err := c.BodyParser(&request); err != nil {
			return writeError(c, fiber.StatusBadRequest, domain.CodeInvalidInput, "Invalid JSON format",
				map[string]any{"errors": err.Error()})
		}

		response, err := optimizerService.ValidateLoad(request)
		if err != nil {
			return writeServiceError(c, err, optimizerService.MaxOrders())
		}

		return c.Status(fiber.StatusOK).JSON(response)
	}
}

func writeServiceError(c *fiber.Ctx, err error, maxOrders int) error {
	switch code := domain.CodeOf(err); code {
	case domain.CodePayloadTooLarge:
		return writeError(c, fiber.StatusRequestEntityTooLarge, code, err.Error(),
			map[string]any{"max_orders": maxOrders})
	case domain.CodeInvalidInput:
		return writeError(c, fiber.StatusBadRequest, code, err.Error(), nil)
	default:
		return err
	}
}

// requestContext carries the request id into the service for log lines.
func requestContext(c *fiber.Ctx) context.Context {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return context.WithValue(c.UserContext(), service.RequestIDKey, id)
}
