package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"store-locator-be/internal/dto"
	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/agent/session"
	"store-locator-be/pkg/discovery"
	"store-locator-be/pkg/geo/overpass"
	"store-locator-be/pkg/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deadMirror(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	return url
}

func newPipeline(src discovery.GeoSource) *discovery.Pipeline {
	return discovery.NewPipeline(src, metadata.NewSynthesizer(rand.NewSource(3)), nil, discovery.Options{}, logger.NewNop())
}

func TestSearchNearbyAllMirrorsDown(t *testing.T) {
	fetcher := overpass.NewFetcher([]string{deadMirror(t), deadMirror(t)}, time.Second, logger.NewNop())
	sessions := newMapSessionStore()
	pub := &recordingPublisher{}
	svc := NewSearchService(newPipeline(fetcher), session.NewManager(sessions), pub, logger.NewNop())

	res, err := svc.SearchNearby(context.Background(), "sid", &dto.SearchNearbyRequest{Lat: 10.77, Lng: 106.70})
	require.NoError(t, err)
	require.Len(t, res.Stores, 4)
	for i, s := range res.Stores {
		assert.Equal(t, fmt.Sprintf("mock_%d", i), s.ID)
		if i > 0 {
			assert.Greater(t, s.DistanceKm, res.Stores[i-1].DistanceKm)
		}
	}

	sc, found, err := sessions.Get(context.Background(), "sid")
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, sc.Location)
	assert.Equal(t, 10.77, sc.Location.Lat)
	assert.Len(t, sc.Stores, 4)

	require.Len(t, pub.events, 1)
	assert.Equal(t, dto.InteractionSearch, pub.events[0].Kind)
	assert.True(t, pub.events[0].Mock)
	assert.Equal(t, []string{"mock_0", "mock_1", "mock_2", "mock_3"}, pub.events[0].StoreIDs)
}

func TestSearchNearbySessionFailure(t *testing.T) {
	sessions := newMapSessionStore()
	sessions.err = errors.New("redis down")
	src := &fakeGeoSource{result: overpass.FetchResult{Reason: overpass.ReasonAllFailed}}
	svc := NewSearchService(newPipeline(src), session.NewManager(sessions), nil, logger.NewNop())

	_, err := svc.SearchNearby(context.Background(), "sid", &dto.SearchNearbyRequest{Lat: 10.77, Lng: 106.70})
	assert.ErrorIs(t, err, sessions.err)
}

func TestSearchKeywordReplacesOnlyWhenFound(t *testing.T) {
	sessions := newMapSessionStore()
	src := &fakeGeoSource{result: overpass.FetchResult{Elements: []overpass.Element{
		element(8, 10.772, 106.700, map[string]string{"name": "Cây xăng 8", "amenity": "fuel"}),
	}}}
	svc := NewSearchService(newPipeline(src), session.NewManager(sessions), nil, logger.NewNop())

	res, err := svc.SearchKeyword(context.Background(), "sid", &dto.SearchKeywordRequest{Lat: 10.77, Lng: 106.70, Keyword: "  Fuel! "})
	require.NoError(t, err)
	require.Len(t, res.Stores, 1)
	assert.Equal(t, "fuel", res.Stores[0].CategoryKey)
	assert.Contains(t, src.queries[0].Build(), `"fuel"`)

	src.result = overpass.FetchResult{Reason: overpass.ReasonNoElements}
	res, err = svc.SearchKeyword(context.Background(), "sid", &dto.SearchKeywordRequest{Lat: 10.77, Lng: 106.70, Keyword: "pharmacy"})
	require.NoError(t, err)
	assert.Empty(t, res.Stores)

	sc, _, _ := sessions.Get(context.Background(), "sid")
	require.Len(t, sc.Stores, 1)
	assert.Equal(t, "8", sc.Stores[0].ID)
}

func TestSearchKeywordRejectsUnsearchable(t *testing.T) {
	src := &fakeGeoSource{}
	svc := NewSearchService(newPipeline(src), session.NewManager(newMapSessionStore()), nil, logger.NewNop())

	_, err := svc.SearchKeyword(context.Background(), "sid", &dto.SearchKeywordRequest{Lat: 10.77, Lng: 106.70, Keyword: "!!!"})
	assert.ErrorIs(t, err, ErrInvalidKeyword)
	assert.Empty(t, src.queries)
}

func TestGetSession(t *testing.T) {
	sessions := newMapSessionStore()
	src := &fakeGeoSource{result: overpass.FetchResult{Reason: overpass.ReasonAllFailed}}
	svc := NewSearchService(newPipeline(src), session.NewManager(sessions), nil, logger.NewNop())

	_, err := svc.GetSession(context.Background(), "sid")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.SearchNearby(context.Background(), "sid", &dto.SearchNearbyRequest{Lat: 10.77, Lng: 106.70})
	require.NoError(t, err)

	res, err := svc.GetSession(context.Background(), "sid")
	require.NoError(t, err)
	require.NotNil(t, res.Location)
	assert.Equal(t, 106.70, res.Location.Lng)
	assert.Len(t, res.Stores, 4)
	assert.NotNil(t, res.UpdatedAt)
}
