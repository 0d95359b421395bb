package session

import (
	"context"
	"fmt"
	"time"

	"store-locator-be/internal/repository/contract"
	"store-locator-be/pkg/store"
)

// Manager handles session context reads and writes
type Manager struct {
	sessions contract.SessionStore
	now      func() time.Time
}

// NewManager creates a new session manager
func NewManager(sessions contract.SessionStore) *Manager {
	return &Manager{sessions: sessions, now: time.Now}
}

// Load returns the stored context, or an empty one for a new session.
func (m *Manager) Load(ctx context.Context, sessionID string) (*store.SessionContext, error) {
	sc, found, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !found || sc == nil {
		return &store.SessionContext{Stores: []store.Store{}}, nil
	}
	if sc.Stores == nil {
		sc.Stores = []store.Store{}
	}
	return sc, nil
}

// Exists reports whether the session has any stored context.
func (m *Manager) Exists(ctx context.Context, sessionID string) (bool, error) {
	_, found, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return found, nil
}

// Save writes the whole context in one put. Last write wins.
func (m *Manager) Save(ctx context.Context, sessionID string, sc *store.SessionContext) error {
	sc.UpdatedAt = m.now()
	if err := m.sessions.Put(ctx, sessionID, sc); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// RecordSearch replaces location and stores after a nearby search.
func (m *Manager) RecordSearch(ctx context.Context, sessionID string, lat, lng float64, stores []store.Store) error {
	return m.Save(ctx, sessionID, &store.SessionContext{
		Location: &store.Location{Lat: lat, Lng: lng},
		Stores:   stores,
	})
}
