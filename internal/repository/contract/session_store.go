package contract

import (
	"context"

	"store-locator-be/pkg/store"
)

// SessionStore keeps one SessionContext per session id. Expiry is owned by
// the implementation.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*store.SessionContext, bool, error)
	Put(ctx context.Context, sessionID string, sc *store.SessionContext) error
	Delete(ctx context.Context, sessionID string) error
}
