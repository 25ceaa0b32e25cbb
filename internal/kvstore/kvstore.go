// Package kvstore is the synchronous key-value persistence provider behind
// per-browser session snapshots. It mirrors the get/set/remove contract of
// browser local storage so the session store can be backed by memory,
// Redis, or SQLite without knowing which.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("kvstore: key not found")

// Provider stores opaque byte values by string key. All calls complete
// before returning; there is no background flushing.
type Provider interface {
	// Get returns the stored value, or ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// prefixed namespaces every key of an underlying provider.
type prefixed struct {
	inner  Provider
	prefix string
}

// WithPrefix returns a Provider that prepends prefix to every key. Used to
// give each browser client its own namespace inside a shared backend.
func WithPrefix(p Provider, prefix string) Provider {
	return &prefixed{inner: p, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}
