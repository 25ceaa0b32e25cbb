package auth

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pugetsound/eventscope/internal/kvstore"
)

// DefaultCacheSize bounds how many signed-in clients keep a live Store.
const DefaultCacheSize = 10000

// Manager hands out one Store per browser client. Only signed-in clients
// are cached, least recently used first out; anonymous clients get a fresh
// Store per request and are adopted into the cache when they log in. An
// evicted client is rebuilt from its persisted snapshot on its next request.
type Manager struct {
	provider   kvstore.Provider
	dir        Directory
	revalidate bool
	stores     *lru.Cache[string, *Store]
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	cacheSize int
}

// WithCacheSize caps the number of cached signed-in clients. Values below
// one fall back to DefaultCacheSize.
func WithCacheSize(n int) ManagerOption {
	return func(o *managerOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// NewManager creates a Manager over a shared provider.
func NewManager(provider kvstore.Provider, dir Directory, revalidate bool, opts ...ManagerOption) *Manager {
	o := managerOptions{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	// lru.New only fails for a non-positive size.
	stores, err := lru.New[string, *Store](o.cacheSize)
	if err != nil {
		panic(fmt.Sprintf("auth: session cache: %v", err))
	}

	return &Manager{
		provider:   provider,
		dir:        dir,
		revalidate: revalidate,
		stores:     stores,
	}
}

// For returns the Store for clientID. A cached store is returned as is;
// otherwise a new one is restored from the provider without holding any
// manager-wide lock. A restore failure is returned and nothing is cached,
// so the next request retries.
func (m *Manager) For(ctx context.Context, clientID string) (*Store, error) {
	if s, ok := m.stores.Get(clientID); ok {
		return s, nil
	}

	s := NewStore(kvstore.WithPrefix(m.provider, clientNamespace(clientID)), m.dir, m.revalidate)
	s.track = func(authenticated bool) { m.track(clientID, s, authenticated) }
	if err := s.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restoring session for client %s: %w", clientID, err)
	}

	if !s.IsAuthenticated() {
		return s, nil
	}

	// Another request for the same client may have restored it first.
	if prev, ok, _ := m.stores.PeekOrAdd(clientID, s); ok {
		return prev, nil
	}
	return s, nil
}

// Len reports how many clients are cached.
func (m *Manager) Len() int {
	return m.stores.Len()
}

// Directory returns the user directory stores authenticate against.
func (m *Manager) Directory() Directory {
	return m.dir
}

func (m *Manager) track(clientID string, s *Store, authenticated bool) {
	if authenticated {
		m.stores.Add(clientID, s)
		return
	}
	if cur, ok := m.stores.Peek(clientID); ok && cur == s {
		m.stores.Remove(clientID)
	}
}

func clientNamespace(clientID string) string {
	return "client:" + clientID + ":"
}
