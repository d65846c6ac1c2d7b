package session

import (
	"context"
	"sync"
	"time"
)

// Store records revoked sessions and per-user sign-out cutoffs. Entries only
// need to outlive the tokens they invalidate.
type Store interface {
	RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error
	SessionRevoked(ctx context.Context, sessionID string) (bool, error)
	// RevokeUser invalidates every token of email issued before at.
	RevokeUser(ctx context.Context, email string, at time.Time, ttl time.Duration) error
	// UserCutoff returns the latest RevokeUser time for email, if any.
	UserCutoff(ctx context.Context, email string) (time.Time, bool, error)
}

type memoryEntry struct {
	at      time.Time
	expires time.Time
}

// MemoryStore is a process-local Store used when no Redis is configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	users    map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: map[string]time.Time{},
		users:    map[string]memoryEntry{},
		now:      time.Now,
	}
}

func (m *MemoryStore) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = m.now().Add(ttl)
	return nil
}

func (m *MemoryStore) SessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(exp) {
		delete(m.sessions, sessionID)
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) RevokeUser(ctx context.Context, email string, at time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[email] = memoryEntry{at: at, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) UserCutoff(ctx context.Context, email string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.users[email]
	if !ok {
		return time.Time{}, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.users, email)
		return time.Time{}, false, nil
	}
	return e.at, true, nil
}
