package filter

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the filtered list and its calendar export. Both are
// public.
func RegisterRoutes(api *echo.Group, h *Handler) {
	api.GET("/events", h.List)
	api.GET("/events.ics", h.Calendar)
}
