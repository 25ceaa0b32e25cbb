// Package auth holds the per-browser session: who is logged in, which events
// they favorited, and which events they submitted. Authentication is a mock
// lookup against a fixed user directory with a single shared password.
//
// Every browser client owns one Store. The Store persists a full snapshot of
// the current user to a key-value provider on every mutation, and restores
// it when the client is first seen.
//
// This is a CORE plugin -- always enabled, cannot be disabled.
package auth

import (
	"slices"
)

// User is a directory member and, once logged in, the session snapshot.
// JSON names match the persisted snapshot format.
type User struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	IsAdmin        bool     `json:"isAdmin"`
	FavoriteEvents []string `json:"favoriteEvents"`
	CreatedEvents  []string `json:"createdEvents"`
}

// HasFavorite reports whether eventID is in the favorite set.
func (u *User) HasFavorite(eventID string) bool {
	return slices.Contains(u.FavoriteEvents, eventID)
}

// clone returns a deep copy. Nil lists become empty so the snapshot always
// encodes [] rather than null.
func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.FavoriteEvents = append([]string{}, u.FavoriteEvents...)
	c.CreatedEvents = append([]string{}, u.CreatedEvents...)
	return &c
}

// toggle flips membership of id in an insertion-ordered set.
func toggle(set []string, id string) []string {
	if idx := slices.Index(set, id); idx >= 0 {
		return slices.Delete(slices.Clone(set), idx, idx+1)
	}
	return append(slices.Clone(set), id)
}

// --- Request DTOs (bound from HTTP requests) ---

// LoginRequest holds the data submitted by the login form.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SessionResponse is the JSON view of a browser client's session.
type SessionResponse struct {
	Authenticated bool  `json:"authenticated"`
	IsAdmin       bool  `json:"isAdmin"`
	User          *User `json:"user"`
}
