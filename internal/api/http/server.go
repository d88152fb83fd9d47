package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ServerConfig bundles what NewApp needs besides the routes.
type ServerConfig struct {
	Name           string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewApp builds the fiber application with middlewares and routes in their required order.
func NewApp(server ServerConfig, routes RouteConfig) *fiber.App {
	logger := server.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               server.Name,
		DisableStartupMessage: true,
		BodyLimit:             1 << 20,
	})

	RegisterGlobal(app, routes)
	RegisterMiddlewares(app, logger, routes.Metrics, server.RequestTimeout)
	RegisterRoutes(app, routes)
	return app
}
