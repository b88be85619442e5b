package httpmw

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sethvargo/go-limiter/httplimit"
	"github.com/sethvargo/go-limiter/memorystore"

	"github.com/fuel-streams/fuel-indexer/pkg/apikey"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// RateLimiter enforces the role-derived per-minute cap from the shared
// apikey.Controller (spec §4.H), keyed by the API key Authentication put in
// the request context. It must be chained after Authentication.
func RateLimiter(limits *apikey.Controller) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, _ := r.Context().Value(ContextKeyAPIKey).(string)
			role, _ := r.Context().Value(ContextKeyRole).(apikey.Role)

			if _, err := limits.CheckRateLimit(key, role); err != nil {
				w.Header().Set("Content-type", "application/json")
				w.WriteHeader(apperrors.HTTPStatus(apperrors.KindOf(err)))
				_ = json.NewEncoder(w).Encode(apperrors.ServiceErrorOf(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ConnectionRateLimiterConfig bounds raw connections per client IP before an
// API key has even been resolved, a coarser defense-in-depth layer against
// flooding that sidesteps the per-key accounting entirely.
type ConnectionRateLimiterConfig struct {
	MaxRPI   uint64
	Interval time.Duration
}

// ConnectionRateLimiter builds an IP-keyed middleware on top of an
// in-memory token bucket store, meant to run ahead of Authentication.
func ConnectionRateLimiter(cfg ConnectionRateLimiterConfig) (mux.MiddlewareFunc, error) {
	store, err := memorystore.New(&memorystore.Config{
		Tokens:   cfg.MaxRPI,
		Interval: cfg.Interval,
	})
	if err != nil {
		return nil, fmt.Errorf("creating connection rate limit store: %s", err)
	}

	keyFunc := func(r *http.Request) (string, error) {
		ip, err := extractClientIP(r)
		if err != nil {
			return "", fmt.Errorf("extract client ip: %s", err)
		}
		return ip, nil
	}

	m, err := httplimit.NewMiddleware(store, keyFunc)
	if err != nil {
		return nil, fmt.Errorf("creating connection rate limit middleware: %s", err)
	}

	return func(next http.Handler) http.Handler {
		return m.Handle(next)
	}, nil
}
