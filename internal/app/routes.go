package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/middleware"
	"github.com/pugetsound/eventscope/internal/plugins/admin"
	"github.com/pugetsound/eventscope/internal/plugins/auth"
	"github.com/pugetsound/eventscope/internal/plugins/events"
	"github.com/pugetsound/eventscope/internal/templates/layouts"
	"github.com/pugetsound/eventscope/internal/templates/pages"
	"github.com/pugetsound/eventscope/internal/widgets/filter"
)

// RegisterRoutes sets up all application routes. It registers public routes
// directly and delegates to each plugin's route registration function.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes() {
	e := a.Echo
	session := auth.LoadSession(a.Sessions)

	// --- Public Routes ---

	// Event feed.
	e.GET("/", a.feed, session)

	// Health check endpoint for container health monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- API Routes ---
	// Every API request resolves its browser client session first.
	api := e.Group("/api/v1", session)

	auth.RegisterRoutes(api, auth.NewHandler(), a.Config.Auth.LoginRateLimit)
	events.RegisterRoutes(api, events.NewHandler(a.Catalog, a.Clock))
	filter.RegisterRoutes(api, filter.NewHandler(a.Catalog, a.Clock, a.Config.BaseURL))
	admin.RegisterRoutes(api, admin.NewHandler(a.Catalog))
}

// feed renders the filtered published list for browsers (GET /).
func (a *App) feed(c echo.Context) error {
	criteria, err := filter.FromRequest(c)
	if err != nil {
		return err
	}

	published := a.Catalog.Published()
	data := pages.FeedData{
		Criteria: criteria,
		Events:   filter.Apply(published, criteria, a.Clock),
		Total:    len(published),
	}

	ctx := layouts.SetActivePath(c.Request().Context(), c.Path())
	if store := auth.GetStore(c); store != nil && store.IsAuthenticated() {
		user := store.Current()
		data.Favorites = user.FavoriteEvents
		ctx = layouts.SetIsAuthenticated(ctx, true)
		ctx = layouts.SetUserName(ctx, user.Name)
		ctx = layouts.SetIsAdmin(ctx, user.IsAdmin)
		ctx = layouts.SetFavoriteCount(ctx, len(user.FavoriteEvents))
	}
	c.SetRequest(c.Request().WithContext(ctx))

	return middleware.Render(c, http.StatusOK, pages.Feed(data))
}
