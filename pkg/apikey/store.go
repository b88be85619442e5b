package apikey

import (
	"sync"

	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// Store resolves the bearer key extracted from an HTTP/WS upgrade request
// into the Role that gates its limits (spec §4.G step 1 "Authenticate").
// Key provisioning itself is deployment glue (out of scope, spec.md §1) —
// this is just the lookup surface pkg/wsserver and pkg/httpmw depend on.
type Store interface {
	// Resolve returns the Role bound to key, or AuthInvalid if key is
	// unrecognized.
	Resolve(key string) (Role, error)
}

// StaticStore is an in-memory Store keyed by the literal API key string,
// the reference implementation for deployments that provision keys out of
// band (e.g. a config file or an admin table loaded once at startup).
type StaticStore struct {
	mu   sync.RWMutex
	keys map[string]Role
}

var _ Store = (*StaticStore)(nil)

// NewStaticStore builds a StaticStore from a fixed key→role map.
func NewStaticStore(keys map[string]Role) *StaticStore {
	copied := make(map[string]Role, len(keys))
	for k, v := range keys {
		copied[k] = v
	}
	return &StaticStore{keys: copied}
}

// Resolve looks key up in the static table.
func (s *StaticStore) Resolve(key string) (Role, error) {
	if key == "" {
		return "", apperrors.New(apperrors.KindAuthMissing, "missing api key")
	}
	s.mu.RLock()
	role, ok := s.keys[key]
	s.mu.RUnlock()
	if !ok {
		return "", apperrors.New(apperrors.KindAuthInvalid, "unrecognized api key")
	}
	return role, nil
}

// Set adds or replaces the role bound to key, for tests and for admin
// endpoints that provision keys at runtime.
func (s *StaticStore) Set(key string, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = role
}

// Revoke removes key from the store.
func (s *StaticStore) Revoke(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}
