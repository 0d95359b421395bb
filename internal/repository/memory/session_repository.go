package memory

import (
	"context"
	"time"

	"store-locator-be/internal/repository/contract"
	"store-locator-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

var _ contract.SessionStore = (*SessionRepository)(nil)

// NewSessionRepository keeps contexts for ttl and purges expired items every ttl/6.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{
		cache: cache.New(ttl, ttl/6),
	}
}

func (r *SessionRepository) Put(ctx context.Context, sessionID string, sc *store.SessionContext) error {
	r.cache.Set(sessionID, clone(sc), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.SessionContext, bool, error) {
	if x, found := r.cache.Get(sessionID); found {
		return clone(x.(*store.SessionContext)), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

// Count returns the number of live sessions.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

// clone detaches stored state from the caller's copy.
func clone(sc *store.SessionContext) *store.SessionContext {
	if sc == nil {
		return &store.SessionContext{}
	}
	c := *sc
	if sc.Location != nil {
		loc := *sc.Location
		c.Location = &loc
	}
	c.Stores = store.CloneAll(sc.Stores)
	return &c
}
