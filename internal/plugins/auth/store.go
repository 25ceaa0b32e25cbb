package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/pugetsound/eventscope/internal/apperror"
	"github.com/pugetsound/eventscope/internal/kvstore"
)

// snapshotKey is the fixed provider key holding the current user snapshot.
const snapshotKey = "user"

// Store holds at most one current user for one browser client. Every
// mutation persists the full snapshot before returning; if persisting
// fails the in-memory change is undone so memory and storage never
// disagree.
type Store struct {
	mu         sync.Mutex
	provider   kvstore.Provider
	dir        Directory
	revalidate bool
	current    *User

	// track, when set, is told the authentication state after a
	// successful login or logout. It is called without s.mu held.
	track func(authenticated bool)
}

// NewStore creates an empty store. Call Restore to load a persisted session.
// When revalidate is true, restored snapshots are checked against dir.
func NewStore(provider kvstore.Provider, dir Directory, revalidate bool) *Store {
	return &Store{
		provider:   provider,
		dir:        dir,
		revalidate: revalidate,
	}
}

// Login authenticates by exact email match and the sentinel password. On
// success the directory's copy of the user becomes current and is
// persisted. A failed login leaves the store untouched.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	user, ok := s.dir.FindByEmail(email)
	if !ok || !s.dir.CheckPassword(password) {
		slog.Info("login rejected", slog.String("email", email))
		return nil, apperror.ErrInvalidCredentials
	}

	s.mu.Lock()
	prev := s.current
	s.current = user
	if err := s.persist(ctx); err != nil {
		s.current = prev
		s.mu.Unlock()
		return nil, apperror.NewInternal(fmt.Errorf("persisting session: %w", err))
	}
	s.mu.Unlock()

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	if s.track != nil {
		s.track(true)
	}

	return user.clone(), nil
}

// Logout clears the current user and erases the snapshot. The in-memory
// identity is always cleared, even when the provider fails; the provider
// error is still reported.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.current != nil {
		slog.Info("user logged out", slog.String("user_id", s.current.ID))
	}
	s.current = nil
	err := s.provider.Remove(ctx, snapshotKey)
	s.mu.Unlock()

	if s.track != nil {
		s.track(false)
	}

	if err != nil {
		slog.Warn("failed to remove session snapshot", slog.Any("error", err))
		return apperror.NewInternal(fmt.Errorf("removing session: %w", err))
	}
	return nil
}

// ToggleFavorite adds eventID to the favorite set if absent, removes it if
// present. Without a current user it does nothing.
func (s *Store) ToggleFavorite(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	prev := s.current.FavoriteEvents
	s.current.FavoriteEvents = toggle(prev, eventID)
	if err := s.persist(ctx); err != nil {
		s.current.FavoriteEvents = prev
		return apperror.NewInternal(fmt.Errorf("persisting favorites: %w", err))
	}
	return nil
}

// RecordCreated remembers that the current user submitted eventID. Adding
// an id already present is a no-op. Without a current user it does nothing.
func (s *Store) RecordCreated(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || slices.Contains(s.current.CreatedEvents, eventID) {
		return nil
	}

	prev := s.current.CreatedEvents
	s.current.CreatedEvents = append(append([]string{}, prev...), eventID)
	if err := s.persist(ctx); err != nil {
		s.current.CreatedEvents = prev
		return apperror.NewInternal(fmt.Errorf("persisting created events: %w", err))
	}
	return nil
}

// Restore loads the persisted snapshot, if any. With revalidation on, the
// snapshot must still name a directory user (same id and email); the
// directory supplies name and admin flag while favorites and created ids
// come from the snapshot. Snapshots that fail to decode or revalidate are
// erased and the store stays logged out.
func (s *Store) Restore(ctx context.Context) error {
	data, err := s.provider.Get(ctx, snapshotKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("reading session: %w", err))
	}

	var snap User
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("discarding undecodable session snapshot", slog.Any("error", err))
		return s.discard(ctx)
	}

	restored := snap.clone()
	if s.revalidate {
		known, ok := s.dir.FindByID(snap.ID)
		if !ok || known.Email != snap.Email {
			slog.Warn("discarding stale session snapshot",
				slog.String("user_id", snap.ID),
				slog.String("email", snap.Email),
			)
			return s.discard(ctx)
		}
		known.FavoriteEvents = restored.FavoriteEvents
		known.CreatedEvents = restored.CreatedEvents
		restored = known.clone()
	}

	s.mu.Lock()
	s.current = restored
	s.mu.Unlock()

	slog.Debug("session restored", slog.String("user_id", restored.ID))
	return nil
}

// Current returns a copy of the current user, or nil when logged out.
func (s *Store) Current() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// IsAuthenticated reports whether a user is current.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// IsAdmin reports the current user's admin flag; false when logged out.
func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.IsAdmin
}

// persist writes the current user snapshot. Caller must hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.current.clone())
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	return s.provider.Set(ctx, snapshotKey, data)
}

// discard erases an unusable snapshot.
func (s *Store) discard(ctx context.Context) error {
	if err := s.provider.Remove(ctx, snapshotKey); err != nil {
		return apperror.NewInternal(fmt.Errorf("removing session: %w", err))
	}
	return nil
}
