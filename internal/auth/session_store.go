// File: internal/auth/session_store.go
package auth

import (
	"time"

	"ecowas_fisheries_backend/internal/shared"

	"github.com/patrickmn/go-cache"
)

// SessionStore caches sessions by Firebase UID so a profile is read once per sign-in.
type SessionStore interface {
	Get(uid string) (*shared.Session, bool)
	Put(session *shared.Session)
	// Revoke marks every token for uid issued at or before at as signed out.
	Revoke(uid string, at time.Time)
	RevokedAt(uid string) (time.Time, bool)
}

// idTokenLifetime bounds how long a revocation has to be remembered.
const idTokenLifetime = time.Hour

// InMemorySessionStore is a SessionStore backed by go-cache.
type InMemorySessionStore struct {
	cache   *cache.Cache
	revoked *cache.Cache
}

// InMemorySessionStoreConfig holds the configuration for the InMemorySessionStore.
type InMemorySessionStoreConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// NewInMemorySessionStore creates a new in-memory session store.
func NewInMemorySessionStore(cfg InMemorySessionStoreConfig) *InMemorySessionStore {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 2 * cfg.TTL
	}
	return &InMemorySessionStore{
		cache:   cache.New(cfg.TTL, cfg.CleanupInterval),
		revoked: cache.New(idTokenLifetime, cfg.CleanupInterval),
	}
}

// Get returns a copy of the cached session for uid.
func (s *InMemorySessionStore) Get(uid string) (*shared.Session, bool) {
	v, found := s.cache.Get(uid)
	if !found {
		return nil, false
	}
	session, ok := v.(shared.Session)
	if !ok {
		return nil, false
	}
	return &session, true
}

// Put stores a copy of session under its UID with the default TTL.
func (s *InMemorySessionStore) Put(session *shared.Session) {
	if session == nil || session.UID == "" {
		return
	}
	s.cache.SetDefault(session.UID, *session)
}

// Invalidate drops the cached session for uid.
func (s *InMemorySessionStore) Invalidate(uid string) {
	s.cache.Delete(uid)
}

// Revoke records the sign-out time for uid and drops its cached session.
func (s *InMemorySessionStore) Revoke(uid string, at time.Time) {
	if uid == "" {
		return
	}
	s.Invalidate(uid)
	s.revoked.SetDefault(uid, at)
}

// RevokedAt returns the last sign-out time recorded for uid.
func (s *InMemorySessionStore) RevokedAt(uid string) (time.Time, bool) {
	v, found := s.revoked.Get(uid)
	if !found {
		return time.Time{}, false
	}
	at, ok := v.(time.Time)
	return at, ok
}
