package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

// Class names a rate-limited route group and its fixed-window budget.
type Class struct {
	Name   string
	Window time.Duration
	Max    int
	// SkipSuccessful refunds the increment when the handler reports
	// success, so only failed attempts count (login).
	SkipSuccessful bool
	Message        string
}

var (
	RateGeneral = Class{
		Name:    "general",
		Window:  15 * time.Minute,
		Max:     100,
		Message: "Too many requests from this IP, please try again later.",
	}
	RateAuth = Class{
		Name:           "auth",
		Window:         15 * time.Minute,
		Max:            5,
		SkipSuccessful: true,
		Message:        "Too many authentication attempts, please try again later.",
	}
	RateSignup = Class{
		Name:    "signup",
		Window:  time.Hour,
		Max:     3,
		Message: "Too many signup attempts, please try again later.",
	}
	RatePasswordReset = Class{
		Name:    "password-reset",
		Window:  time.Hour,
		Max:     3,
		Message: "Too many password reset attempts, please try again later.",
	}
	RateUsernameCheck = Class{
		Name:    "username-check",
		Window:  5 * time.Minute,
		Max:     20,
		Message: "Too many username check requests, please slow down.",
	}
)

// CounterStore owns the per-IP fixed-window counters. Implementations must
// be safe for concurrent use; the in-process store can be swapped for the
// redis-backed one when limits need to hold across instances.
type CounterStore interface {
	// Incr bumps the counter for key, starting a fresh window when none is
	// active, and returns the new count.
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
	// Decr refunds one increment within the current window.
	Decr(ctx context.Context, key string, window time.Duration) error
}

type RateLimiter struct {
	store CounterStore
}

func NewRateLimiter(store CounterStore) *RateLimiter {
	return &RateLimiter{store: store}
}

type rateSuccessKey struct{}

// MarkRateSuccess flags the request as successful for skip-successful
// classes. Login failures answer with a redirect just like successes, so
// the response status alone cannot tell them apart.
func MarkRateSuccess(ctx context.Context) {
	if flag, ok := ctx.Value(rateSuccessKey{}).(*bool); ok {
		*flag = true
	}
}

// Limit enforces the class budget per client IP. Counter store failures
// fail open: a broken backend degrades limiting, never the request path.
func (l *RateLimiter) Limit(c Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := c.Name + ":" + clientIP(r)

			n, err := l.store.Incr(r.Context(), key, c.Window)
			if err != nil {
				log.Printf("WARN [middleware.RateLimiter] counter store failed: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if n > c.Max {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": c.Message})
				return
			}

			if !c.SkipSuccessful {
				next.ServeHTTP(w, r)
				return
			}

			var success bool
			ctx := context.WithValue(r.Context(), rateSuccessKey{}, &success)
			next.ServeHTTP(w, r.WithContext(ctx))

			if success {
				if err := l.store.Decr(r.Context(), key, c.Window); err != nil {
					log.Printf("WARN [middleware.RateLimiter] counter refund failed: %v", err)
				}
			}
		})
	}
}

// clientIP prefers the first X-Forwarded-For entry, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			forwarded = forwarded[:idx]
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
