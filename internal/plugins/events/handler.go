package events

import (
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/apperror"
	"github.com/pugetsound/eventscope/internal/clock"
	"github.com/pugetsound/eventscope/internal/plugins/auth"
	"github.com/pugetsound/eventscope/internal/sanitize"
)

// shortDescriptionMax is the display cap on card summaries, in characters.
const shortDescriptionMax = 100

// Handler handles HTTP requests for single events, submissions, and the
// user dashboard. Handlers are thin: they bind the request, call the
// catalog, and render the response. No business logic lives here.
type Handler struct {
	catalog Catalog
	clock   clock.Clock
}

// NewHandler creates a new events handler.
func NewHandler(catalog Catalog, clk clock.Clock) *Handler {
	return &Handler{catalog: catalog, clock: clk}
}

// DashboardResponse lists the current user's favorite and submitted events
// that are published.
type DashboardResponse struct {
	User      *auth.User `json:"user"`
	Favorites []Event    `json:"favorites"`
	Created   []Event    `json:"created"`
}

// Tags returns the tag vocabulary (GET /api/v1/tags).
func (h *Handler) Tags(c echo.Context) error {
	return c.JSON(http.StatusOK, AllTags())
}

// Show returns one published event (GET /api/v1/events/:id).
func (h *Handler) Show(c echo.Context) error {
	ev, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		return apperror.NewNotFound("event not found")
	}
	return c.JSON(http.StatusOK, ev)
}

// Submit creates a pending event for the current user (POST /api/v1/events).
// Text fields are stripped to plain text before they reach the catalog.
func (h *Handler) Submit(c echo.Context) error {
	store := auth.GetStore(c)
	if store == nil {
		return apperror.NewMissingContext()
	}
	user := store.Current()
	if user == nil {
		return apperror.NewUnauthorized("authentication required")
	}

	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	draft, err := h.draftFrom(req, user.ID)
	if err != nil {
		return err
	}

	ev := h.catalog.Submit(draft)
	if err := store.RecordCreated(c.Request().Context(), ev.ID); err != nil {
		// The submission itself stands; only the dashboard link is lost.
		slog.Warn("failed to record created event",
			slog.String("event_id", ev.ID),
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return c.JSON(http.StatusCreated, ev)
}

// Dashboard returns the current user's published favorites and submissions
// (GET /api/v1/dashboard).
func (h *Handler) Dashboard(c echo.Context) error {
	store := auth.GetStore(c)
	if store == nil {
		return apperror.NewMissingContext()
	}
	user := store.Current()
	if user == nil {
		return apperror.NewUnauthorized("authentication required")
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		User:      user,
		Favorites: h.catalog.ResolveIDs(user.FavoriteEvents),
		Created:   h.catalog.ResolveIDs(user.CreatedEvents),
	})
}

// draftFrom sanitizes and validates a submission.
func (h *Handler) draftFrom(req SubmitRequest, userID string) (Draft, error) {
	d := Draft{
		Title:            sanitize.Text(req.Title),
		Description:      sanitize.Text(req.Description),
		ShortDescription: sanitize.Text(req.ShortDescription),
		Date:             sanitize.Text(req.Date),
		Time:             sanitize.Text(req.Time),
		Location:         sanitize.Text(req.Location),
		CreatedBy:        userID,
		ImageURL:         sanitize.URL(req.ImageURL),
	}

	if d.Title == "" {
		return Draft{}, apperror.NewBadRequest("title is required")
	}
	if d.Location == "" {
		return Draft{}, apperror.NewBadRequest("location is required")
	}
	if _, err := clock.ParseDate(d.Date, h.clock.Location()); err != nil {
		return Draft{}, apperror.NewBadRequest("date must be YYYY-MM-DD")
	}
	if utf8.RuneCountInString(d.ShortDescription) > shortDescriptionMax {
		return Draft{}, apperror.NewBadRequest(fmt.Sprintf("short description must be at most %d characters", shortDescriptionMax))
	}
	if req.ImageURL != "" && d.ImageURL == "" {
		return Draft{}, apperror.NewBadRequest("image URL must be an http or https link")
	}

	seen := make(map[Tag]bool, len(req.Tags))
	for _, raw := range req.Tags {
		t, err := ParseTag(raw)
		if err != nil {
			return Draft{}, apperror.NewBadRequest(err.Error())
		}
		if !seen[t] {
			seen[t] = true
			d.Tags = append(d.Tags, t)
		}
	}

	return d, nil
}
