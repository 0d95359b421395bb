package service

import (
	"context"
	"errors"
	"sync"

	"store-locator-be/internal/dto"
	"store-locator-be/pkg/geo/overpass"
	"store-locator-be/pkg/llm"
	"store-locator-be/pkg/store"
)

type mapSessionStore struct {
	mu  sync.Mutex
	m   map[string]*store.SessionContext
	err error
}

func newMapSessionStore() *mapSessionStore {
	return &mapSessionStore{m: map[string]*store.SessionContext{}}
}

func (s *mapSessionStore) Get(ctx context.Context, id string) (*store.SessionContext, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, false, s.err
	}
	sc, ok := s.m[id]
	if !ok {
		return nil, false, nil
	}
	c := *sc
	c.Stores = store.CloneAll(sc.Stores)
	return &c, true, nil
}

func (s *mapSessionStore) Put(ctx context.Context, id string, sc *store.SessionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	c := *sc
	c.Stores = store.CloneAll(sc.Stores)
	s.m[id] = &c
	return nil
}

func (s *mapSessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

// scriptedProvider answers every call with the same raw text.
type scriptedProvider struct {
	out   string
	err   error
	calls int
}

func (p *scriptedProvider) ChatAccept(ctx context.Context, history []llm.Message, accept func(string) error, options ...llm.Option) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if err := accept(p.out); err != nil {
		return "", err
	}
	return p.out, nil
}

func downProvider() *scriptedProvider {
	return &scriptedProvider{err: errors.New("provider unavailable")}
}

type fakeGeoSource struct {
	result  overpass.FetchResult
	queries []overpass.Query
}

func (f *fakeGeoSource) Fetch(ctx context.Context, q overpass.Query) overpass.FetchResult {
	f.queries = append(f.queries, q)
	return f.result
}

type recordingPublisher struct {
	events []dto.InteractionEvent
}

func (r *recordingPublisher) Publish(ctx context.Context, evt dto.InteractionEvent) {
	r.events = append(r.events, evt)
}

func ptr(f float64) *float64 { return &f }

func element(id int64, lat, lon float64, tags map[string]string) overpass.Element {
	return overpass.Element{ID: id, Type: "node", Lat: ptr(lat), Lon: ptr(lon), Tags: tags}
}
