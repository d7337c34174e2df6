package api

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"load-optimizer/internal/domain"
	"load-optimizer/internal/service"
)

// hardBodyFactor sizes fasthttp's own limit above BodyLimit so that
// RequestSizeLimiter, not the transport, answers oversized bodies.
const hardBodyFactor = 4

type Options struct {
	BodyLimit      int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewApp builds the fiber application with middleware and routes installed.
func NewApp(optimizerService *service.OptimizerService, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "SmartLoad Optimizer v1.0",
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		BodyLimit:    opts.BodyLimit * hardBodyFactor,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(Metrics())
	app.Use(RequestSizeLimiter(opts.BodyLimit))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst)
	SetupRoutes(app, optimizerService, limiter)

	return app
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An unexpected error occurred"
	errCode := domain.CodeInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
		switch code {
		case fiber.StatusRequestEntityTooLarge:
			errCode = domain.CodePayloadTooLarge
		case fiber.StatusTooManyRequests:
			errCode = domain.CodeRateLimited
		default:
			if code < fiber.StatusInternalServerError {
				errCode = domain.CodeInvalidInput
			}
		}
	} else {
		log.Printf("req_id=%v unhandled error: %v", c.Locals(requestid.ConfigDefault.ContextKey), err)
	}

	return writeError(c, code, errCode, message, nil)
}

func writeError(c *fiber.Ctx, status int, code domain.ErrorCode, message string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return c.Status(status).JSON(domain.ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}
