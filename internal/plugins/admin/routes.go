package admin

import (
	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/plugins/auth"
)

// RegisterRoutes sets up moderation routes under /admin on the API group.
// The group must already run auth.LoadSession. Returns the admin group so
// other plugins can register additional admin routes.
func RegisterRoutes(api *echo.Group, h *Handler) *echo.Group {
	admin := api.Group("/admin", auth.RequireAdmin())

	admin.GET("/pending", h.Pending)
	admin.GET("/stats", h.Stats)
	admin.POST("/events/:id/approve", h.Approve)
	admin.POST("/events/:id/reject", h.Reject)

	return admin
}
