package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"store-locator-be/internal/repository/contract"
	"store-locator-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "locator:session:"

// SessionRepository stores contexts as JSON with a sliding TTL.
type SessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ contract.SessionStore = (*SessionRepository)(nil)

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

func (r *SessionRepository) Put(ctx context.Context, sessionID string, sc *store.SessionContext) error {
	payload, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+sessionID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.SessionContext, bool, error) {
	raw, err := r.rdb.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get session: %w", err)
	}

	var sc store.SessionContext
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sc, true, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, keyPrefix+sessionID).Err()
}
