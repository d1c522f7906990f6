package memory

import (
	"context"
	"sync"
	"time"
)

// SessionStore is the revocation list used when Redis is disabled.
type SessionStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{revoked: map[string]time.Time{}, now: time.Now}
}

func (s *SessionStore) Revoke(_ context.Context, jti string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if until.After(s.now()) {
		s.revoked[jti] = until
	}
	return nil
}

func (s *SessionStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if !until.After(s.now()) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}
