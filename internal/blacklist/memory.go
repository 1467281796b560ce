package blacklist

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. It is safe for concurrent use but is
// scoped to a single instance: deployments running more than one replica
// should use Redis instead, since a jti blacklisted on one replica is
// invisible to the others.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time

	now func() time.Time
}

// NewMemory returns an empty in-process blacklist.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Add records jti until now+ttl. A non-positive ttl is a no-op: the token
// is already expired and will be rejected by signature verification anyway.
func (m *Memory) Add(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[jti] = m.now().Add(ttl)
	m.sweepLocked()
	return nil
}

// Contains reports whether jti is blacklisted and not yet expired.
func (m *Memory) Contains(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if m.now().After(exp) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

// sweepLocked drops expired entries. Called opportunistically on Add so the
// map stays bounded without a background goroutine.
func (m *Memory) sweepLocked() {
	now := m.now()
	for jti, exp := range m.entries {
		if now.After(exp) {
			delete(m.entries, jti)
		}
	}
}
