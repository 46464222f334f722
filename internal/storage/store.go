package storage

import (
	"context"
	"time"

	"github.com/haoyun-crm/feishu-intake-bot/internal/models"
)

// Key layout in the backing store.
const (
	SessionKeyPrefix = "user_state:"
	TableIDCacheKey  = "target_table_id"
	EventKeyPrefix   = "event:"
)

// Store is the key-value store used for conversation sessions, the resolved
// table-id cache and webhook replay suppression. All values expire.
type Store interface {
	// Session operations. GetSession returns (nil, nil) when the user has
	// no active session.
	GetSession(ctx context.Context, userID string) (*models.Session, error)
	SetSession(ctx context.Context, userID string, session *models.Session, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID string) error

	// Generic TTL'd values (table-id cache). GetValue returns "" when the
	// key is absent or expired.
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX stores the value only if the key is absent, reporting whether
	// it was stored. Used to suppress webhook event redelivery.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Ping reports backend connectivity for health checks.
	Ping(ctx context.Context) error
}
