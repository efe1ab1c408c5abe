// Package tokenstore persists the single bearer token that represents a
// storefront session across process restarts. A Store wraps a durable
// Backend, serializes access to it, and absorbs storage faults: when the
// backend is unavailable the Store behaves as though no token is persisted.
package tokenstore

import (
	"sync"

	"github.com/golang/glog"
)

// Backend is durable storage for one token slot.
type Backend interface {
	// Load returns the stored token, or an empty string if there is none.
	Load() (string, error)
	// Save replaces the stored token.
	Save(token string) error
	// Delete empties the slot. Deleting an empty slot is not an error.
	Delete() error
	// DeleteIf atomically empties the slot if it holds the given token. It
	// returns true if the slot no longer holds a token other than the given
	// one, i.e. the slot was emptied or was already empty.
	DeleteIf(token string) (bool, error)
}

// Store is the process-wide handle on the persisted token. It is safe for
// concurrent use.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// NewStore returns a Store backed by the given Backend.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
	}
}

// Read returns the persisted token, if any. Storage faults are logged and
// reported as no token.
func (s *Store) Read() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, err := s.backend.Load()
	if err != nil {
		glog.Warningf("token storage unavailable; treating as empty: %s", err)
		return "", false
	}
	return token, token != ""
}

// Write persists the given token, replacing any previous one. Writing an
// empty token is equivalent to Clear.
func (s *Store) Write(token string) {
	if token == "" {
		s.Clear()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Save(token); err != nil {
		glog.Warningf("error persisting token %s: %s", Redact(token), err)
	}
}

// Clear removes the persisted token. It is idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(); err != nil {
		glog.Warningf("error clearing persisted token: %s", err)
	}
}

// ClearIf removes the persisted token only if it is the given one. It
// returns true if, afterwards, no token other than the given one is
// persisted. If storage is unavailable nothing is known to be persisted, so
// ClearIf reports true.
func (s *Store) ClearIf(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cleared, err := s.backend.DeleteIf(token)
	if err != nil {
		glog.Warningf(
			"error clearing persisted token %s: %s",
			Redact(token),
			err,
		)
		return true
	}
	return cleared
}

// Redact returns a prefix of the token suitable for logs.
func Redact(token string) string {
	const visible = 4
	if len(token) <= visible {
		return "****"
	}
	return token[:visible] + "****"
}
