package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/middleware"
)

// RegisterRoutes sets up the session endpoints on the API group. The group
// must already run LoadSession.
//
// Login is rate-limited per IP to slow down password guessing.
func RegisterRoutes(api *echo.Group, h *Handler, loginPerMinute int) {
	s := api.Group("/session")
	s.GET("", h.Session)
	s.POST("/login", h.Login, middleware.RateLimit(loginPerMinute, time.Minute))
	s.POST("/logout", h.Logout)
	s.POST("/favorites/:eventId", h.ToggleFavorite)
}
