package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/ereignis/ereignis-api/internal/observability"
	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

// RegisterMiddlewares installs, outermost first: the per-request deadline, the
// access log, the error envelope and panic recovery.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(deadline(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorEnvelope(logger, metrics))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, r any) {
			logger.Error("panic recovered",
				zap.String("path", c.Path()),
				zap.Any("panic", r),
				zap.Stack("stack"))
		},
	}))
}

// deadline bounds the resolver's context. Stores honour it through ctx.
func deadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorEnvelope turns a handler error into {"errors":[{code,message,details}]}
// with the error's status. Internal causes are logged, never rendered.
func errorEnvelope(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}
		domainErr := apperrors.ToDomainError(err)
		metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
		if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"errors": []fiber.Map{envelopeEntry(domainErr)}})
	}
}

func envelopeEntry(err *apperrors.DomainError) fiber.Map {
	entry := fiber.Map{
		"code":    err.Code,
		"message": err.Message,
	}
	if len(err.Details) > 0 {
		entry["details"] = err.Details
	}
	return entry
}
