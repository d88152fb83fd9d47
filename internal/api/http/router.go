package http

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/ereignis/ereignis-api/internal/api/http/handlers"
	"github.com/ereignis/ereignis-api/internal/auth"
	"github.com/ereignis/ereignis-api/internal/observability"
	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

// RateLimit bounds requests per client IP on the operation endpoint. Zero Max disables it.
type RateLimit struct {
	Max    int
	Window time.Duration
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Graph   *handlers.GraphHandler
	Session *auth.SessionMiddleware
	Metrics *observability.Metrics

	// CookieSecret seeds the key that encrypts the session cookie.
	CookieSecret string
	CORSOrigin   string
	RateLimit    RateLimit
}

// RegisterGlobal attaches the request id and CORS middlewares. Credentials are
// only allowed for an explicit origin.
func RegisterGlobal(app *fiber.App, cfg RouteConfig) {
	origin := strings.TrimSpace(cfg.CORSOrigin)
	if origin == "" {
		origin = "*"
	}
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origin,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowCredentials: origin != "*",
	}))
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	chain := []fiber.Handler{
		encryptcookie.New(encryptcookie.Config{Key: CookieKey(cfg.CookieSecret)}),
		cfg.Session.Handle,
	}
	if cfg.RateLimit.Max > 0 {
		chain = append([]fiber.Handler{rateLimiter(cfg.RateLimit)}, chain...)
	}
	chain = append(chain, cfg.Graph.Execute)
	app.Post("/graphql", chain...)
}

// CookieKey derives the base64 AES-256 key encryptcookie expects from an arbitrary secret.
func CookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func rateLimiter(cfg RateLimit) fiber.Handler {
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperrors.NewDomainError("TOO_MANY_REQUESTS", "too many requests", fiber.StatusTooManyRequests, nil)
		},
	})
}
