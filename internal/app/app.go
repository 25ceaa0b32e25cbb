// Package app is the application bootstrap and dependency injection root.
// It creates and holds all shared infrastructure (session storage, user
// directory, event catalog, Echo instance) and wires together all plugins
// and widgets.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/apperror"
	"github.com/pugetsound/eventscope/internal/clock"
	"github.com/pugetsound/eventscope/internal/config"
	"github.com/pugetsound/eventscope/internal/kvstore"
	"github.com/pugetsound/eventscope/internal/middleware"
	"github.com/pugetsound/eventscope/internal/plugins/auth"
	"github.com/pugetsound/eventscope/internal/plugins/events"
	"github.com/pugetsound/eventscope/internal/seed"
	"github.com/pugetsound/eventscope/internal/templates/pages"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Clock defines "now" and the local calendar for time-window filters.
	Clock clock.Clock

	// Sessions hands out one session store per browser client.
	Sessions *auth.Manager

	// Catalog holds the published and pending event collections.
	Catalog events.Catalog

	// Echo is the HTTP server instance.
	Echo *echo.Echo
}

// New creates a new App from the seed data and a session storage
// provider, and configures the Echo server with global middleware and
// error handling.
func New(cfg *config.Config, provider kvstore.Provider, data *seed.Data, clk clock.Clock) (*App, error) {
	dir, err := auth.NewStaticDirectory(data.Users, cfg.Auth.SentinelPassword)
	if err != nil {
		return nil, fmt.Errorf("building user directory: %w", err)
	}

	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Configure trusted reverse proxy IPs so c.RealIP() returns the actual
	// client IP instead of the proxy's IP. The login rate limit keys on it.
	if err := middleware.TrustedProxies(e, cfg.TrustedProxies); err != nil {
		return nil, err
	}

	sessions := auth.NewManager(provider, dir, cfg.Auth.RevalidateSession,
		auth.WithCacheSize(cfg.Auth.SessionCacheSize))

	app := &App{
		Config:   cfg,
		Clock:    clk,
		Sessions: sessions,
		Catalog:  events.NewCatalog(clk, events.NewIDGenerator(), data.Published, data.Pending),
		Echo:     e,
	}

	// Register global middleware in order of execution.
	app.setupMiddleware()

	// Register the custom error handler that maps AppErrors to HTTP responses.
	e.HTTPErrorHandler = app.errorHandler

	return app, nil
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first, innermost (CSRF) runs last.
func (a *App) setupMiddleware() {
	// Panic recovery -- must be outermost to catch panics from all other middleware.
	a.Echo.Use(middleware.Recovery())

	// Request logging -- log every request with method, path, status, latency.
	a.Echo.Use(middleware.RequestLogger())

	// Security headers -- CSP, X-Frame-Options, X-Content-Type-Options, etc.
	a.Echo.Use(middleware.SecurityHeaders())

	// CORS -- allow the configured origin to call the JSON API with cookies.
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{a.Config.BaseURL},
		AllowCredentials: true,
	}))

	// CSRF -- double-submit cookie pattern on all state-changing requests.
	a.Echo.Use(middleware.CSRF())
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to appropriate HTTP responses, and renders error pages for
// browser requests or JSON for API requests.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	errType := "internal_error"
	message := "An unexpected error occurred"

	// Check if it's our domain error type.
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		errType = appErr.Type
		message = appErr.Message

		// Log internal errors with the underlying cause.
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	} else {
		// Check for Echo's built-in HTTP errors (e.g., 404 from router).
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			code = echoErr.Code
			errType = "http_error"
			if msg, ok := echoErr.Message.(string); ok {
				message = msg
			} else {
				message = defaultErrorMessage(code)
			}
		} else {
			// Truly unexpected error -- log it.
			slog.Error("unhandled error",
				slog.Any("error", err),
				slog.String("path", c.Request().URL.Path),
			)
		}
	}

	// API requests always get JSON.
	if middleware.IsAPI(c) {
		_ = c.JSON(code, map[string]string{
			"error":   http.StatusText(code),
			"type":    errType,
			"message": message,
		})
		return
	}

	_ = middleware.Render(c, code, pages.ErrorPage(code, message))
}

// defaultErrorMessage returns a user-friendly message for common HTTP status codes
// when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusUnauthorized:
		return "You need to log in to access this page."
	case http.StatusForbidden:
		return "You don't have permission to access this resource."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist or has been moved."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "An unexpected error occurred."
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting eventscope server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}
