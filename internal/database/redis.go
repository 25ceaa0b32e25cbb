// Package database provides connection setup for the persistence backends
// behind the session key-value provider. Connections are created once at
// startup and shared via dependency injection. This package owns the
// connection lifecycle (open, ping, close).
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pugetsound/eventscope/internal/config"
)

// NewRedis creates a new Redis client from the given config. It parses the
// URL, connects, and pings to verify connectivity before returning.
//
// Redis may still be starting when the app container launches, so the ping
// is retried with exponential backoff before giving up.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	const maxRetries = 5
	backoff := 500 * time.Millisecond
	var pingErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pingErr = client.Ping(ctx).Err()
		cancel()

		if pingErr == nil {
			return client, nil
		}
		if attempt == maxRetries {
			break
		}

		slog.Warn("redis not ready, retrying...",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", maxRetries),
			slog.Duration("backoff", backoff),
			slog.Any("error", pingErr),
		)
		time.Sleep(backoff)
		backoff = min(backoff*2, 10*time.Second)
	}

	client.Close()
	return nil, fmt.Errorf("pinging redis after %d attempts: %w", maxRetries, pingErr)
}
