package events

import (
	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/plugins/auth"
)

// RegisterRoutes sets up the event endpoints on the API group. The group
// must already run auth.LoadSession. Reads are public; submitting and the
// dashboard need a logged-in user.
func RegisterRoutes(api *echo.Group, h *Handler) {
	api.GET("/tags", h.Tags)
	api.GET("/events/:id", h.Show)

	api.POST("/events", h.Submit, auth.RequireAuth())
	api.GET("/dashboard", h.Dashboard, auth.RequireAuth())
}
