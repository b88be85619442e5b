package httpmw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-streams/fuel-indexer/pkg/apikey"
)

func TestAuthenticationAcceptsKnownKey(t *testing.T) {
	store := apikey.NewStaticStore(map[string]apikey.Role{"k1": apikey.Builder})

	var gotRole apikey.Role
	var gotKey string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey, _ = r.Context().Value(ContextKeyAPIKey).(string)
		gotRole, _ = r.Context().Value(ContextKeyRole).(apikey.Role)
		w.WriteHeader(http.StatusOK)
	})

	h := Authentication(store)(next)

	r := httptest.NewRequest(http.MethodGet, "/blocks", nil)
	r.Header.Set("X-Api-Key", "k1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "k1", gotKey)
	assert.Equal(t, apikey.Builder, gotRole)
}

func TestAuthenticationAcceptsQueryParamKey(t *testing.T) {
	store := apikey.NewStaticStore(map[string]apikey.Role{"k2": apikey.WebClient})

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	h := Authentication(store)(next)

	r := httptest.NewRequest(http.MethodGet, "/blocks?api_key=k2", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticationRejectsMissingKey(t *testing.T) {
	store := apikey.NewStaticStore(nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next should not run without a key")
	})

	h := Authentication(store)(next)

	r := httptest.NewRequest(http.MethodGet, "/blocks", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticationRejectsUnknownKey(t *testing.T) {
	store := apikey.NewStaticStore(nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next should not run with an unrecognized key")
	})

	h := Authentication(store)(next)

	r := httptest.NewRequest(http.MethodGet, "/blocks", nil)
	r.Header.Set("X-Api-Key", "ghost")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
