package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/storecore/catalog-api/internal/config"
)

// RateLimitConfig bounds how often a single client IP may hit a route.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// AuthRateLimit shapes the login throttle from the application config.
func AuthRateLimit(cfg config.AuthConfig) RateLimitConfig {
	return RateLimitConfig{
		Requests: cfg.LoginRateLimit,
		Window:   cfg.LoginRateWindow,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(cfg RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate_limit_exceeded","message":"too many requests, try again later"}`))
		}),
	)
}
