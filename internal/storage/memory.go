package storage

import (
	"context"
	"sync"
	"time"

	"github.com/haoyun-crm/feishu-intake-bot/internal/models"
)

type memoryEntry struct {
	session   *models.Session
	value     string
	expiresAt time.Time
}

// MemoryStore holds sessions and values in memory with a janitor goroutine
// sweeping expired entries. For tests and single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

// NewMemoryStore creates an in-memory store and starts its janitor.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		entries: make(map[string]*memoryEntry),
	}
	go m.cleanupExpired()
	return m
}

func (m *MemoryStore) GetSession(ctx context.Context, userID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[SessionKeyPrefix+userID]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.session, nil
}

func (m *MemoryStore) SetSession(ctx context.Context, userID string, session *models.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[SessionKeyPrefix+userID] = &memoryEntry{
		session:   session,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, SessionKeyPrefix+userID)
	return nil
}

func (m *MemoryStore) GetValue(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[key]
	if !exists || time.Now().After(entry.expiresAt) {
		return "", nil
	}
	return entry.value, nil
}

func (m *MemoryStore) SetValue(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *MemoryStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, exists := m.entries[key]; exists && time.Now().Before(entry.expiresAt) {
		return false, nil
	}
	m.entries[key] = &memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return true, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// cleanupExpired sweeps expired entries every minute.
func (m *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		m.mu.Lock()
		for key, entry := range m.entries {
			if now.After(entry.expiresAt) {
				delete(m.entries, key)
			}
		}
		m.mu.Unlock()
	}
}
