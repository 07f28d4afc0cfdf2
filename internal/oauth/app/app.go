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

	httpapi "github.com/aussiebroadwan/oauthgw/internal/oauth/http"
	"github.com/aussiebroadwan/oauthgw/internal/oauth/idp/drivers/keycloak"
	"github.com/aussiebroadwan/oauthgw/internal/oauth/service"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/aussiebroadwan/oauthgw/pkg/httpx"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"

	"github.com/NYTimes/gziphandler"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// BuildVersion is overridden with -ldflags "-X .../internal/oauth/app.BuildVersion=..."
var BuildVersion = "v0.1.0"

const serviceName = "oauth-service"

// Application encapsulates the gateway with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	provider        *keycloak.Provider
	shutdownTracing func(context.Context) error

	// Services
	authService   *service.AuthService
	userService   *service.UserService
	rolesService  *service.RolesService
	accessService *service.AccessService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
		}),
	}

	ctx := context.Background()

	shutdown, err := initTracing(ctx, cfg.Trace.Exporter, BuildVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.shutdownTracing = shutdown

	if err := app.initProvider(ctx); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wrapped HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.server.Handler
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("oauth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"realm", app.cfg.Keycloak.Realm,
		"access_policy", app.cfg.Access.Policy,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down oauth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.shutdownTracing(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
		return err
	}

	app.logger.Info("oauth service stopped")
	return nil
}

// initProvider builds the Keycloak driver. Upstream calls are traced.
func (app *Application) initProvider(ctx context.Context) error {
	timeout := app.cfg.Keycloak.Timeout
	if timeout <= 0 {
		timeout = keycloak.DefaultTimeout
	}

	provider, err := keycloak.NewProvider(ctx, keycloak.Config{
		BaseURL:      app.cfg.Keycloak.BaseURL,
		Realm:        app.cfg.Keycloak.Realm,
		ClientID:     app.cfg.Keycloak.ClientID,
		ClientSecret: app.cfg.Keycloak.ClientSecret,
		Audience:     app.cfg.Keycloak.Audience,
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize keycloak provider: %w", err)
	}

	app.provider = provider
	return nil
}

// initServices initializes all request adapters
func (app *Application) initServices() error {
	app.authService = &service.AuthService{IDP: app.provider}
	app.userService = &service.UserService{IDP: app.provider}
	app.rolesService = &service.RolesService{IDP: app.provider}

	policy, err := service.NewAccessPolicy(app.cfg.Access.Policy, app.provider, app.cfg.Access.Allowlist)
	if err != nil {
		return fmt.Errorf("failed to initialize access policy: %w", err)
	}
	app.accessService = &service.AccessService{Policy: policy}

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	errs := httpx.Errors{Normalizer: errx.Normalizer{
		Source: app.cfg.Error.Source,
		Debug:  app.cfg.Error.Debug,
	}}

	router := httpapi.NewRouter(
		errs,
		httpx.CORS{Origins: app.cfg.CORS.AllowedOrigins, MaxAge: 10 * time.Minute},
		app.provider,
		BuildVersion,
		app.logger,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.RolesService = app.rolesService
	router.AccessService = app.accessService
	router.ApplyRoutes()

	app.router = router

	handler := otelhttp.NewHandler(gziphandler.GzipHandler(router), serviceName)

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
