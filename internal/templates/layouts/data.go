// data.go provides typed context helpers for passing layout data from
// handlers to page components. Only simple types are stored so the layouts
// package never imports plugin types.
//
// Data flow: Handler → Go Context → Base layout
package layouts

import "context"

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey string

const (
	keyIsAuthenticated ctxKey = "layout_is_authenticated"
	keyUserName        ctxKey = "layout_user_name"
	keyIsAdmin         ctxKey = "layout_is_admin"
	keyFavoriteCount   ctxKey = "layout_favorite_count"
	keyActivePath      ctxKey = "layout_active_path"
)

// --- Setters ---

// SetIsAuthenticated stores whether the browser client has a current user.
func SetIsAuthenticated(ctx context.Context, authed bool) context.Context {
	return context.WithValue(ctx, keyIsAuthenticated, authed)
}

// SetUserName stores the current user's display name.
func SetUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyUserName, name)
}

// SetIsAdmin stores whether the current user moderates submissions.
func SetIsAdmin(ctx context.Context, isAdmin bool) context.Context {
	return context.WithValue(ctx, keyIsAdmin, isAdmin)
}

// SetFavoriteCount stores the number of favorited events for the header badge.
func SetFavoriteCount(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, keyFavoriteCount, n)
}

// SetActivePath stores the request path for nav highlighting.
func SetActivePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, keyActivePath, path)
}

// --- Getters ---

// IsAuthenticated returns true if the layout was rendered for a signed-in user.
func IsAuthenticated(ctx context.Context) bool {
	v, _ := ctx.Value(keyIsAuthenticated).(bool)
	return v
}

// GetUserName returns the current user's display name, or "".
func GetUserName(ctx context.Context) string {
	v, _ := ctx.Value(keyUserName).(string)
	return v
}

// GetIsAdmin returns true if the current user is an admin.
func GetIsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(keyIsAdmin).(bool)
	return v
}

// GetFavoriteCount returns the favorite badge count.
func GetFavoriteCount(ctx context.Context) int {
	v, _ := ctx.Value(keyFavoriteCount).(int)
	return v
}

// GetActivePath returns the current request path.
func GetActivePath(ctx context.Context) string {
	v, _ := ctx.Value(keyActivePath).(string)
	return v
}
