package auth

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/apperror"
	"github.com/pugetsound/eventscope/internal/middleware"
)

// clientCookieName identifies the browser client. It is the server-side
// stand-in for the browser's local storage origin: one cookie, one Store.
const clientCookieName = "eventscope_client"

// Context keys for storing session data in Echo context. Other plugins
// use these keys (via the exported getter functions below) to access
// the current browser client's session.
const (
	contextKeyStore    = "auth_store"
	contextKeyClientID = "auth_client_id"
)

// LoadSession returns middleware that resolves the browser client cookie
// to its Store and injects it into the request context. Clients without a
// valid cookie get a fresh id. Every request passes through, logged in or
// not.
func LoadSession(manager *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID := getClientID(c)
			if clientID == "" {
				clientID = uuid.NewString()
				setClientCookie(c, clientID)
			}

			store, err := manager.For(c.Request().Context(), clientID)
			if err != nil {
				slog.Error("failed to load session",
					slog.String("client_id", clientID),
					slog.Any("error", err),
				)
				return apperror.NewInternal(err)
			}

			c.Set(contextKeyStore, store)
			c.Set(contextKeyClientID, clientID)
			return next(c)
		}
	}
}

// RequireAuth rejects requests whose browser client has no current user.
// Must run after LoadSession.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := GetStore(c)
			if store == nil || !store.IsAuthenticated() {
				return handleUnauthenticated(c)
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects requests whose current user is not an admin.
// Must run after LoadSession.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := GetStore(c)
			if store == nil || !store.IsAuthenticated() {
				return handleUnauthenticated(c)
			}
			if !store.IsAdmin() {
				return apperror.NewForbidden("admin access required")
			}
			return next(c)
		}
	}
}

// handleUnauthenticated redirects browsers to the feed. API clients get an
// unauthorized AppError, which the app error handler renders as JSON.
func handleUnauthenticated(c echo.Context) error {
	if middleware.IsAPI(c) {
		return apperror.NewUnauthorized("authentication required")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// --- Exported getters for other plugins ---

// GetStore retrieves the browser client's Store from the Echo context.
// Returns nil if LoadSession did not run.
func GetStore(c echo.Context) *Store {
	store, ok := c.Get(contextKeyStore).(*Store)
	if !ok {
		return nil
	}
	return store
}

// GetUserID returns the current user's id, or empty string when logged out.
func GetUserID(c echo.Context) string {
	store := GetStore(c)
	if store == nil {
		return ""
	}
	if u := store.Current(); u != nil {
		return u.ID
	}
	return ""
}

// --- Helpers ---

// getClientID reads the client id cookie. Values that are not UUIDs are
// ignored so arbitrary cookie content never becomes a storage key.
func getClientID(c echo.Context) string {
	cookie, err := c.Cookie(clientCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return ""
	}
	return id.String()
}

// setClientCookie sets the client id cookie. HttpOnly, Secure if behind TLS,
// SameSite=Lax.
func setClientCookie(c echo.Context, clientID string) {
	req := c.Request()
	c.SetCookie(&http.Cookie{
		Name:     clientCookieName,
		Value:    clientID,
		Path:     "/",
		HttpOnly: true,
		Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60, // one year in seconds
	})
}
