package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ereignis/ereignis-api/internal/api/dto"
	"github.com/ereignis/ereignis-api/internal/api/graph"
	httptransport "github.com/ereignis/ereignis-api/internal/api/http"
	"github.com/ereignis/ereignis-api/internal/api/http/handlers"
	"github.com/ereignis/ereignis-api/internal/auth"
	"github.com/ereignis/ereignis-api/internal/config"
	"github.com/ereignis/ereignis-api/internal/events"
	"github.com/ereignis/ereignis-api/internal/mail"
	"github.com/ereignis/ereignis-api/internal/observability"
	"github.com/ereignis/ereignis-api/internal/persistence"
	"github.com/ereignis/ereignis-api/internal/repository"
	"github.com/ereignis/ereignis-api/internal/repository/memory"
	"github.com/ereignis/ereignis-api/internal/service"
	"github.com/ereignis/ereignis-api/internal/session"
	"github.com/ereignis/ereignis-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redis.Close()

	var (
		userRepo    repository.UserRepository
		addressRepo repository.AddressRepository
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		addressRepo = repository.NewAddressRepository(pg.PoolHandle())
	} else {
		userRepo = memory.NewUserStore(nil)
		addressRepo = memory.NewAddressStore(nil)
	}

	var sessionStore session.Store = session.NewMemoryStore()
	if redis.Enabled() {
		sessionStore = session.NewRedisStore(redis.Client, cfg.Redis.KeyPrefix)
	}
	sessions := session.NewManager(sessionStore, cfg.Session.MaxAge, logger)

	var mailer mail.Mailer = mail.NewLogMailer(cfg.Mail.From, logger)
	if cfg.Mail.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.From,
		})
	}
	mailWorker := worker.NewMailWorker(mailer, logger, cfg.Mail.Workers, cfg.Mail.QueueSize)
	mailWorker.Start(ctx)

	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewNotificationService(dispatcher, mailWorker, logger, cfg.Mail.ConfirmationURL).RegisterHandlers()

	userService := service.NewUserService(service.UserDependencies{
		Users:      userRepo,
		Sessions:   sessions,
		Hasher:     auth.NewHasher(cfg.Auth.BcryptCost),
		Tokens:     auth.NewConfirmationTokens(cfg.Auth.ConfirmationSecret, cfg.Auth.ConfirmationTTL),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	addressService := service.NewAddressService(addressRepo, logger)

	metrics := observability.NewMetrics()
	binder := dto.NewBinder()
	registry := graph.NewRegistry(logger, metrics)
	graph.RegisterUserOperations(registry, userService, binder)
	graph.RegisterAddressOperations(registry, addressService, binder)
	logger.Info("operations registered", zap.Strings("operations", registry.Names()))

	app := httptransport.NewApp(httptransport.ServerConfig{
		Name:           cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
	}, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Probe{
			"postgres": pg.Ping,
			"redis":    redis.Ping,
		}),
		Graph: handlers.NewGraphHandler(registry, binder),
		Session: auth.NewSessionMiddleware(sessions, userRepo, auth.CookieConfig{
			Name:   cfg.Session.CookieName,
			MaxAge: cfg.Session.MaxAge,
			Domain: cfg.Session.Domain,
			Secure: cfg.App.IsProduction(),
		}, logger),
		Metrics:      metrics,
		CookieSecret: cfg.Session.Secret,
		CORSOrigin:   cfg.CORS.Origin,
		RateLimit: httptransport.RateLimit{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		},
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	mailWorker.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
