package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/haoyun-crm/feishu-intake-bot/internal/models"
)

// NoopStore is the degraded backend used when Redis is unreachable at
// startup. Every user is permanently idle: sessions are never persisted, so
// intake conversations cannot progress past the instruction prompt. The
// startup log makes this mode explicit.
type NoopStore struct{}

// NewNoopStore creates the degraded store.
func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

func (n *NoopStore) GetSession(ctx context.Context, userID string) (*models.Session, error) {
	return nil, nil
}

func (n *NoopStore) SetSession(ctx context.Context, userID string, session *models.Session, ttl time.Duration) error {
	return nil
}

func (n *NoopStore) DeleteSession(ctx context.Context, userID string) error {
	return nil
}

func (n *NoopStore) GetValue(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (n *NoopStore) SetValue(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}

// SetNX reports the key as stored so event handling proceeds; without a
// backend there is nothing to dedupe against.
func (n *NoopStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (n *NoopStore) Ping(ctx context.Context) error {
	return fmt.Errorf("session store disabled")
}
