package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lucentpay/console-gateway/internal/config"
	"github.com/lucentpay/console-gateway/internal/db"
	"github.com/lucentpay/console-gateway/internal/login"
	"github.com/lucentpay/console-gateway/internal/proxy"
	"github.com/lucentpay/console-gateway/internal/refresh"
	"github.com/lucentpay/console-gateway/internal/sessions"
	"github.com/lucentpay/console-gateway/internal/upstream"
	"golang.org/x/time/rate"
)

func main() {
	// Logging setup
	slog.SetDefault(jsonLogger)
	// Load configuration
	ch := config.NewConfigHandler()
	gwConfig, err := ch.Config()
	if err != nil {
		slog.Error("loading the configuration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("loaded config", "config", gwConfig)
	err = gwConfig.Validate()
	if err != nil {
		slog.Error("the config validation failed", "error", err)
		os.Exit(1)
	}
	// Set log level to "debug" if activated
	if gwConfig.DebugMode {
		logLevel.Set(slog.LevelDebug)
	}
	// Setup
	e := echo.New()
	e.Pre(middleware.RequestID(), middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	// The banner and the port do not respect the logger formatting we set below so we remove them
	// the port will be logged further down when the server starts.
	e.HideBanner = true
	e.HidePort = true
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	// Version endpoint
	buildInfo, ok := debug.ReadBuildInfo()
	version := ""
	if ok && buildInfo != nil {
		version = buildInfo.Main.Version
	}
	e.GET("/version", func(c echo.Context) error {
		return c.String(http.StatusOK, version)
	})
	// Initialize the db adapter
	dbOptions := []db.RedisAdapterOption{db.WithRedisConfig(gwConfig.Redis)}
	if gwConfig.Credentials.Encryption.Enabled && gwConfig.Credentials.Encryption.SecretKey != "" {
		slog.Info("redis encryption is enabled")
		dbOptions = append(dbOptions, db.WithEncryption(string(gwConfig.Credentials.Encryption.SecretKey)))
	}
	dbAdapter, err := db.NewRedisAdapter(dbOptions...)
	if err != nil {
		slog.Error("DB adapter initialization failed", "error", err)
		os.Exit(1)
	}
	// Initialize the upstream auth client
	authClient, err := upstream.NewAuthClient(upstream.WithConfig(gwConfig.Upstream))
	if err != nil {
		slog.Error("upstream auth client initialization failed", "error", err)
		os.Exit(1)
	}
	// Initialize the refresh coordinator
	coordinator, err := refresh.NewCoordinator(
		refresh.WithUpstream(authClient),
		refresh.WithCredentialRepository(dbAdapter),
		refresh.WithExpiryMargin(time.Duration(gwConfig.Credentials.ExpiryMarginSeconds)*time.Second),
	)
	if err != nil {
		slog.Error("refresh coordinator initialization failed", "error", err)
		os.Exit(1)
	}
	// Background credential sweep
	if gwConfig.Credentials.SweepIntervalMinutes > 0 {
		go func() {
			interval := time.Duration(gwConfig.Credentials.SweepIntervalMinutes) * time.Minute
			err := refresh.ScheduleSweep(context.Background(), coordinator, interval)
			if err != nil {
				slog.Error("credential sweep initialization failed", "error", err)
			}
		}()
	}
	// Create session store
	sessionStore, err := sessions.NewSessionStore(
		sessions.WithSessionRepository(dbAdapter),
		sessions.WithConfig(gwConfig.Sessions),
	)
	if err != nil {
		slog.Error("failed to initialize sessions", "error", err)
		os.Exit(1)
	}
	// Add the session store to the common middlewares
	gwMiddlewares := append(commonMiddlewares, sessionStore.Middleware())
	// Initialize the API proxy
	apiProxy, err := proxy.NewProxy(
		proxy.WithConfig(gwConfig.Upstream),
		proxy.WithCredentialSource(coordinator),
		proxy.WithSessionStore(sessionStore),
	)
	if err != nil {
		slog.Error("proxy handlers initialization failed", "error", err)
		os.Exit(1)
	}
	apiProxy.RegisterHandlers(e, gwMiddlewares...)
	// Initialize login server
	loginServer, err := login.NewLoginServer(
		login.WithUpstream(authClient),
		login.WithSessionStore(sessionStore),
		login.WithCredentialRepository(dbAdapter),
	)
	if err != nil {
		slog.Error("login handlers initialization failed", "error", err)
		os.Exit(1)
	}
	loginServer.RegisterHandlers(e, gwMiddlewares...)
	// Rate limiting
	if gwConfig.Server.RateLimits.Enabled {
		e.Use(middleware.RateLimiter(
			middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(gwConfig.Server.RateLimits.Rate),
					Burst:     gwConfig.Server.RateLimits.Burst,
					ExpiresIn: 3 * time.Minute,
				}),
		),
		)
	}
	// CORS
	if len(gwConfig.Server.AllowOrigin) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: gwConfig.Server.AllowOrigin}))
	}
	// Sentry
	if gwConfig.Monitoring.Sentry.Enabled {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              string(gwConfig.Monitoring.Sentry.Dsn),
			TracesSampleRate: gwConfig.Monitoring.Sentry.SampleRate,
			Environment:      gwConfig.Monitoring.Sentry.Environment,
		})
		if err != nil {
			slog.Error("sentry initialization failed", "error", err)
		}
		e.Use(sentryecho.New(sentryecho.Options{}))
	}
	// Prometheus
	if gwConfig.Monitoring.Prometheus.Enabled {
		e.Use(echoprometheus.NewMiddleware("gateway"))
		go func() {
			metrics := echo.New()
			metrics.HideBanner = true
			metrics.HidePort = true
			metrics.GET("/metrics", echoprometheus.NewHandler())
			err := metrics.Start(fmt.Sprintf(":%d", gwConfig.Monitoring.Prometheus.Port))
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("prometheus server failed to start", "error", err)
				os.Exit(1)
			}
		}()
	}
	// Start server
	address := fmt.Sprintf("%s:%d", gwConfig.Server.Host, gwConfig.Server.Port)
	slog.Info("starting the server on address " + address)
	go func() {
		err := e.Start(address)
		if err != nil && err != http.ErrServerClosed {
			slog.Error("shutting down the server gracefuly failed", "error", err)
			os.Exit(1)
		}
	}()
	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("received signal to shut down the server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("shutting down the server gracefully failed", "error", err)
		os.Exit(1)
	}
}
