package httpmw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-streams/fuel-indexer/pkg/apikey"
)

func withAuth(r *http.Request, key string, role apikey.Role) *http.Request {
	ctx := context.WithValue(r.Context(), ContextKeyAPIKey, key)
	ctx = context.WithValue(ctx, ContextKeyRole, role)
	return r.WithContext(ctx)
}

func TestRateLimiterAllowsUnderCap(t *testing.T) {
	now := time.Unix(1000, 0)
	limits := apikey.NewControllerWithClock(func() time.Time { return now })

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimiter(limits)(next)

	r := withAuth(httptest.NewRequest(http.MethodGet, "/blocks", nil), "k1", apikey.Builder)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterBlocksOverCap(t *testing.T) {
	now := time.Unix(2000, 0)
	limits := apikey.NewControllerWithClock(func() time.Time { return now })

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimiter(limits)(next)

	r := withAuth(httptest.NewRequest(http.MethodGet, "/blocks", nil), "k2", apikey.WebClient)

	var lastCode int
	for i := 0; i < 1001; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		lastCode = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestRateLimiterIsolatesKeys(t *testing.T) {
	now := time.Unix(3000, 0)
	limits := apikey.NewControllerWithClock(func() time.Time { return now })

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimiter(limits)(next)

	rA := withAuth(httptest.NewRequest(http.MethodGet, "/blocks", nil), "a", apikey.WebClient)
	for i := 0; i < 1001; i++ {
		h.ServeHTTP(httptest.NewRecorder(), rA)
	}

	rB := withAuth(httptest.NewRequest(http.MethodGet, "/blocks", nil), "b", apikey.WebClient)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, rB)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConnectionRateLimiterBlocksFloodFromOneIP(t *testing.T) {
	mw, err := ConnectionRateLimiter(ConnectionRateLimiterConfig{MaxRPI: 500, Interval: time.Second})
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := mw(next)

	r := httptest.NewRequest(http.MethodGet, "/blocks", nil)
	r.RemoteAddr = "203.0.113.9:1234"

	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code == http.StatusTooManyRequests
	}, 5*time.Second, time.Millisecond)
}
