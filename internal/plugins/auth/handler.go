package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/apperror"
)

// Handler handles HTTP requests for the browser session (login, logout,
// favorites). Handlers are thin: they bind the request, call the Store, and
// render the response. No business logic lives here.
type Handler struct{}

// NewHandler creates a new session handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Session returns the current session state (GET /api/v1/session).
func (h *Handler) Session(c echo.Context) error {
	store := GetStore(c)
	if store == nil {
		return apperror.NewMissingContext()
	}
	return c.JSON(http.StatusOK, sessionResponse(store))
}

// Login authenticates the browser client (POST /api/v1/session/login).
func (h *Handler) Login(c echo.Context) error {
	store := GetStore(c)
	if store == nil {
		return apperror.NewMissingContext()
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	if _, err := store.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse(store))
}

// Logout ends the session (POST /api/v1/session/logout). Logout always
// succeeds from the client's point of view; a storage failure is logged.
func (h *Handler) Logout(c echo.Context) error {
	store := GetStore(c)
	if store == nil {
		return apperror.NewMissingContext()
	}

	if err := store.Logout(c.Request().Context()); err != nil {
		slog.Warn("logout could not erase snapshot",
			slog.String("client_id", clientIDFrom(c)),
			slog.Any("error", err),
		)
	}
	return c.JSON(http.StatusOK, sessionResponse(store))
}

// ToggleFavorite flips an event in the favorite set
// (POST /api/v1/session/favorites/:eventId). Without a current user this
// is a no-op that reports the logged-out session.
func (h *Handler) ToggleFavorite(c echo.Context) error {
	store := GetStore(c)
	if store == nil {
		return apperror.NewMissingContext()
	}

	eventID := c.Param("eventId")
	if eventID == "" {
		return apperror.NewBadRequest("event id is required")
	}

	if err := store.ToggleFavorite(c.Request().Context(), eventID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse(store))
}

// sessionResponse snapshots the store for JSON output.
func sessionResponse(store *Store) SessionResponse {
	u := store.Current()
	return SessionResponse{
		Authenticated: u != nil,
		IsAdmin:       u != nil && u.IsAdmin,
		User:          u,
	}
}

func clientIDFrom(c echo.Context) string {
	id, _ := c.Get(contextKeyClientID).(string)
	return id
}
