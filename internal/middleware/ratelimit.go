// Package middleware provides HTTP middleware for the eventscope server.
// ratelimit.go implements a per-IP rate limiter using a fixed window
// counter stored in memory. Used on the login endpoint.
package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pugetsound/eventscope/internal/apperror"
)

// rateLimitEntry tracks request counts for a single IP within a time window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// RateLimit returns middleware that limits requests per IP to maxRequests
// within the given window duration. When exceeded it sets Retry-After and
// returns a rate_limited AppError (429). A non-positive maxRequests
// disables the limit.
func RateLimit(maxRequests int, window time.Duration) echo.MiddlewareFunc {
	if maxRequests <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	var mu sync.Mutex
	entries := make(map[string]*rateLimitEntry)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			now := time.Now()

			mu.Lock()
			// Sweep expired entries.
			for k, e := range entries {
				if now.Sub(e.windowStart) > window*2 {
					delete(entries, k)
				}
			}

			entry, exists := entries[ip]
			if !exists || now.Sub(entry.windowStart) > window {
				entries[ip] = &rateLimitEntry{count: 1, windowStart: now}
				mu.Unlock()
				return next(c)
			}

			entry.count++
			if entry.count > maxRequests {
				retry := window - now.Sub(entry.windowStart)
				mu.Unlock()
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				return apperror.NewRateLimited("Too many attempts. Please try again later.")
			}
			mu.Unlock()
			return next(c)
		}
	}
}
