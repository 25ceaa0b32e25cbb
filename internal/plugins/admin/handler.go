// Package admin provides event moderation. Admin routes require the current
// user's admin flag and expose the pending queue, approve/reject, and
// collection counts.
package admin

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/plugins/auth"
	"github.com/pugetsound/eventscope/internal/plugins/events"
)

// Handler handles moderation HTTP requests. Depends on the catalog via its
// interface -- no direct collection access.
type Handler struct {
	catalog events.Catalog
}

// NewHandler creates a new admin handler.
func NewHandler(catalog events.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// PendingResponse is the moderation queue with the header counts.
type PendingResponse struct {
	Events []events.Event `json:"events"`
	Stats  events.Stats   `json:"stats"`
}

// ModerationResponse reports the outcome of approve/reject. Changed is
// false when the id was not pending; that is not an error.
type ModerationResponse struct {
	Changed bool          `json:"changed"`
	Event   *events.Event `json:"event,omitempty"`
	Stats   events.Stats  `json:"stats"`
}

// Pending lists submissions awaiting review (GET /api/v1/admin/pending).
func (h *Handler) Pending(c echo.Context) error {
	return c.JSON(http.StatusOK, PendingResponse{
		Events: h.catalog.Pending(),
		Stats:  h.catalog.Stats(),
	})
}

// Stats returns collection counts (GET /api/v1/admin/stats).
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Stats())
}

// Approve publishes a pending event (POST /api/v1/admin/events/:id/approve).
func (h *Handler) Approve(c echo.Context) error {
	id := c.Param("id")
	ev, ok := h.catalog.Approve(id)

	resp := ModerationResponse{Changed: ok, Stats: h.catalog.Stats()}
	if ok {
		resp.Event = &ev
		slog.Info("moderation",
			slog.String("action", "approve"),
			slog.String("event_id", id),
			slog.String("admin_id", auth.GetUserID(c)),
		)
	}
	return c.JSON(http.StatusOK, resp)
}

// Reject discards a pending event (POST /api/v1/admin/events/:id/reject).
func (h *Handler) Reject(c echo.Context) error {
	id := c.Param("id")
	ok := h.catalog.Reject(id)

	if ok {
		slog.Info("moderation",
			slog.String("action", "reject"),
			slog.String("event_id", id),
			slog.String("admin_id", auth.GetUserID(c)),
		)
	}
	return c.JSON(http.StatusOK, ModerationResponse{Changed: ok, Stats: h.catalog.Stats()})
}
