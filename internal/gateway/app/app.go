package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/threeds/internal/gateway/http"
	"github.com/aussiebroadwan/threeds/internal/gateway/service"
	"github.com/aussiebroadwan/threeds/internal/gateway/store"
	"github.com/aussiebroadwan/threeds/internal/gateway/store/drivers/postgres"
	"github.com/aussiebroadwan/threeds/internal/gateway/store/drivers/redis"
	"github.com/aussiebroadwan/threeds/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/threeds/pkg/cardvault"
	"github.com/aussiebroadwan/threeds/pkg/cybersource"
	"github.com/aussiebroadwan/threeds/pkg/idx"
	"github.com/aussiebroadwan/threeds/pkg/slogx"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	sessions  store.Sessions
	redis     *redis.Sessions // Optional: only with SESSION_BACKEND=redis
	vault     *cardvault.Vault
	processor *cybersource.Client

	// Optional: only when an OTLP endpoint is configured
	tracerProvider *sdktrace.TracerProvider

	// Services
	orderService        *service.OrderService
	checkoutService     *service.CheckoutService
	challengeService    *service.ChallengeService
	webhookService      *service.WebhookService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "threeds-gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSessions(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initVault(); err != nil {
		app.closeStores()
		return nil, err
	}

	if err := app.initTracing(context.Background()); err != nil {
		app.closeStores()
		return nil, err
	}

	app.initProcessor()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"processor_host", app.processor.Host(),
		"configured", app.processor.IsConfigured(),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Flush pending spans
	app.shutdownTracing(ctx)

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("gateway stopped")
	return nil
}

func (app *Application) closeStores() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(app.cfg.DatabaseDSN)
	case "sqlite", "":
		db, err = sqlite.NewStore(app.cfg.DatabaseDSN)
	default:
		return fmt.Errorf("unknown database driver %q", app.cfg.DatabaseDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initSessions picks where authentication sessions live
func (app *Application) initSessions() error {
	switch app.cfg.SessionBackend {
	case "redis":
		sessions := redis.NewSessions(redis.NewClient(app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sessions.Ping(ctx); err != nil {
			_ = sessions.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}

		app.redis = sessions
		app.sessions = sessions
		app.logger.Info("auth sessions stored in redis", "addr", app.cfg.RedisAddr, "db", app.cfg.RedisDB)
	case "sql", "":
		app.sessions = app.db.Sessions()
	default:
		return fmt.Errorf("unknown session backend %q", app.cfg.SessionBackend)
	}
	return nil
}

// initVault loads the card snapshot key
func (app *Application) initVault() error {
	vault, err := cardvault.New(cardvault.KeySource{
		Path:     app.cfg.CardVaultKeyPath,
		Material: app.cfg.CardVaultKey,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize card vault: %w", err)
	}
	app.vault = vault

	if vault.Ephemeral() {
		app.logger.Warn("card vault key is ephemeral - pending challenges will not survive a restart")
	}
	return nil
}

// initProcessor builds the signed processor client
func (app *Application) initProcessor() {
	if err := app.cfg.Credentials.Normalize().Validate(); err != nil {
		app.logger.Warn("processor credentials incomplete - checkout is disabled", "error", err)
	}

	var opts []cybersource.Option
	if app.tracerProvider != nil {
		opts = append(opts, cybersource.WithTracerProvider(app.tracerProvider))
	}
	app.processor = newProcessor(app.cfg, app.logger, opts...)
}

// newProcessor applies the processor settings from cfg.
func newProcessor(cfg Config, logger *slog.Logger, opts ...cybersource.Option) *cybersource.Client {
	base := []cybersource.Option{
		cybersource.WithTimeout(cfg.Timeout),
		cybersource.WithDebug(cfg.Debug),
		cybersource.WithLogger(logger),
	}
	return cybersource.NewClient(cfg.Credentials, append(base, opts...)...)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	ids := idx.NewGenerator(nil)

	app.orderService = &service.OrderService{
		Store:    app.db,
		Sessions: app.sessions,
	}
	app.checkoutService = &service.CheckoutService{
		Store:     app.db,
		Sessions:  app.sessions,
		Processor: app.processor,
		Vault:     app.vault,
		URLs: service.URLs{
			PublicURL:   app.cfg.PublicURL,
			CheckoutURL: app.cfg.CheckoutURL,
		},
		ChallengeCode: app.cfg.ChallengeCode,
		ChallengeTTL:  app.cfg.ChallengeTTL,
		IDs:           ids,
	}
	app.challengeService = &service.ChallengeService{
		Store:    app.db,
		Sessions: app.sessions,
	}
	app.webhookService = &service.WebhookService{
		Store: app.db,
		IDs:   ids,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.checkoutService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.WebhookRetention = app.cfg.WebhookRetention
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	// Wire services to router
	router.Configured = app.processor.IsConfigured
	if app.redis != nil {
		router.SessionsPinger = app.redis
	}
	router.OrderService = app.orderService
	router.CheckoutService = app.checkoutService
	router.ChallengeService = app.challengeService
	router.WebhookService = app.webhookService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
