package filter

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/apperror"
	"github.com/pugetsound/eventscope/internal/clock"
	"github.com/pugetsound/eventscope/internal/plugins/events"
)

// Handler serves filtered views of the published collection.
type Handler struct {
	catalog events.Catalog
	clock   clock.Clock
	baseURL string
}

// NewHandler creates a new filter handler.
func NewHandler(catalog events.Catalog, clk clock.Clock, baseURL string) *Handler {
	return &Handler{catalog: catalog, clock: clk, baseURL: baseURL}
}

// ListResponse is the JSON body of the filtered list endpoint.
type ListResponse struct {
	Events   []events.Event `json:"events"`
	Total    int            `json:"total"`
	Filtered bool           `json:"filtered"`
}

// List returns published events matching ?q=&when=&tags= (GET /api/v1/events).
func (h *Handler) List(c echo.Context) error {
	criteria, err := FromRequest(c)
	if err != nil {
		return err
	}

	published := h.catalog.Published()
	matched := Apply(published, criteria, h.clock)
	return c.JSON(http.StatusOK, ListResponse{
		Events:   matched,
		Total:    len(published),
		Filtered: !criteria.IsZero(),
	})
}

// Calendar exports the same filtered list as iCalendar
// (GET /api/v1/events.ics).
func (h *Handler) Calendar(c echo.Context) error {
	criteria, err := FromRequest(c)
	if err != nil {
		return err
	}

	matched := Apply(h.catalog.Published(), criteria, h.clock)

	var buf bytes.Buffer
	if err := events.WriteICS(&buf, matched, h.clock.Location(), h.baseURL); err != nil {
		return apperror.NewInternal(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="events.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// FromRequest reads criteria from the q, when, and tags query parameters.
// tags may repeat or hold a comma-separated list. Unknown selectors are a
// 400.
func FromRequest(c echo.Context) (Criteria, error) {
	criteria, err := Parse(c.QueryParam("q"), c.QueryParam("when"), c.QueryParams()["tags"])
	if err != nil {
		return Criteria{}, apperror.NewBadRequest(err.Error())
	}
	return criteria, nil
}
