package service

import (
	"context"
	"errors"
	"testing"

	"store-locator-be/internal/dto"
	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/agent/intent"
	"store-locator-be/pkg/agent/response"
	"store-locator-be/pkg/agent/session"
	"store-locator-be/pkg/geo/overpass"
	"store-locator-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	sessions  *mapSessionStore
	source    *fakeGeoSource
	publisher *recordingPublisher
	svc       IChatService
}

func newChatFixture(classifierOut, answerOut *scriptedProvider) *chatFixture {
	f := &chatFixture{
		sessions:  newMapSessionStore(),
		source:    &fakeGeoSource{result: overpass.FetchResult{Reason: overpass.ReasonNoElements}},
		publisher: &recordingPublisher{},
	}
	log := logger.NewNop()
	f.svc = NewChatService(
		newPipeline(f.source),
		intent.NewClassifier(classifierOut, log),
		response.NewGenerator(answerOut, log),
		session.NewManager(f.sessions),
		f.publisher,
		log,
	)
	return f
}

func priorStores() []store.Store {
	return []store.Store{
		{ID: "101", Name: "Cafe A", CategoryKey: "cafe", DistanceKm: 0.2},
		{ID: "102", Name: "Cafe B", CategoryKey: "cafe", DistanceKm: 0.1},
	}
}

func (f *chatFixture) seed(t *testing.T, withLocation bool) {
	t.Helper()
	sc := &store.SessionContext{Stores: priorStores()}
	if withLocation {
		sc.Location = &store.Location{Lat: 10.77, Lng: 106.70}
	}
	require.NoError(t, f.sessions.Put(context.Background(), "sid", sc))
}

func assertSuggestionInList(t *testing.T, res *dto.ChatResponse) {
	t.Helper()
	if res.SuggestedStore == nil {
		return
	}
	_, ok := store.FindByID(res.Stores, res.SuggestedStore.ID)
	assert.True(t, ok, "suggested store %s not in response stores", res.SuggestedStore.ID)
}

func TestSendChatFuelSearchUpdatesMap(t *testing.T) {
	f := newChatFixture(
		&scriptedProvider{out: "Sure! ```json\n{\"action\":\"SEARCH\",\"keyword\":\"fuel\"}\n```"},
		&scriptedProvider{out: `{"reply":"Có 2 trạm xăng gần bạn.","best_store_id":"8"}`},
	)
	f.seed(t, true)
	f.source.result = overpass.FetchResult{Elements: []overpass.Element{
		element(7, 10.775, 106.700, map[string]string{"name": "Petrolimex 12", "amenity": "fuel"}),
		element(8, 10.772, 106.700, map[string]string{"name": "Cây xăng Comeco", "shop": "kiosk"}),
	}}

	res, err := f.svc.SendChat(context.Background(), "sid", &dto.ChatRequest{Message: "Tìm trạm xăng"})
	require.NoError(t, err)

	assert.Equal(t, dto.ChatActionUpdateMap, res.Action)
	require.Len(t, res.Stores, 2)
	for _, s := range res.Stores {
		assert.Equal(t, "fuel", s.CategoryKey)
	}
	require.NotNil(t, res.SuggestedStore)
	assert.Equal(t, "8", res.SuggestedStore.ID)
	assertSuggestionInList(t, res)

	sc, _, _ := f.sessions.Get(context.Background(), "sid")
	require.Len(t, sc.Stores, 2)
	assert.Equal(t, "8", sc.Stores[0].ID)
	assert.Equal(t, 10.77, sc.Location.Lat)

	require.Len(t, f.publisher.events, 1)
	evt := f.publisher.events[0]
	assert.Equal(t, dto.InteractionChat, evt.Kind)
	assert.Equal(t, dto.ChatActionUpdateMap, evt.Action)
	assert.Equal(t, "8", evt.SuggestedID)
}

func TestSendChatEmptyResearchKeepsStores(t *testing.T) {
	f := newChatFixture(
		&scriptedProvider{out: `{"action":"SEARCH","keyword":"pharmacy"}`},
		&scriptedProvider{out: `{"reply":"Quán B gần nhất.","best_store_id":"102"}`},
	)
	f.seed(t, true)

	res, err := f.svc.SendChat(context.Background(), "sid", &dto.ChatRequest{Message: "Có nhà thuốc không?"})
	require.NoError(t, err)

	assert.Equal(t, dto.ChatActionChat, res.Action)
	assert.Equal(t, priorStores(), res.Stores)
	require.Len(t, f.source.queries, 1)

	sc, _, _ := f.sessions.Get(context.Background(), "sid")
	assert.Equal(t, priorStores(), sc.Stores)
	assertSuggestionInList(t, res)
}

func TestSendChatSearchWithoutLocationIsSkipped(t *testing.T) {
	f := newChatFixture(
		&scriptedProvider{out: `{"action":"SEARCH","keyword":"fuel"}`},
		&scriptedProvider{out: `{"reply":"Bạn hãy chia sẻ vị trí trước nhé.","best_store_id":null}`},
	)
	f.seed(t, false)

	res, err := f.svc.SendChat(context.Background(), "sid", &dto.ChatRequest{Message: "Tìm trạm xăng"})
	require.NoError(t, err)
	assert.Equal(t, dto.ChatActionChat, res.Action)
	assert.Empty(t, f.source.queries)
	assert.Nil(t, res.SuggestedStore)
}

func TestSendChatDropsUnknownSuggestion(t *testing.T) {
	f := newChatFixture(
		&scriptedProvider{out: `{"action":"CHAT"}`},
		&scriptedProvider{out: `{"reply":"Thử quán này.","best_store_id":"999"}`},
	)
	f.seed(t, true)

	res, err := f.svc.SendChat(context.Background(), "sid", &dto.ChatRequest{Message: "Quán nào ngon?"})
	require.NoError(t, err)
	assert.Equal(t, "Thử quán này.", res.Reply)
	assert.Nil(t, res.SuggestedStore)
	assert.Empty(t, f.publisher.events[0].SuggestedID)
}

func TestSendChatProvidersDown(t *testing.T) {
	f := newChatFixture(downProvider(), downProvider())
	f.seed(t, true)

	res, err := f.svc.SendChat(context.Background(), "sid", &dto.ChatRequest{Message: "Tìm trạm xăng"})
	require.NoError(t, err)

	assert.Equal(t, dto.ChatActionChat, res.Action)
	assert.Equal(t, response.FallbackReply, res.Reply)
	require.NotNil(t, res.SuggestedStore)
	assert.Equal(t, "102", res.SuggestedStore.ID)
	assertSuggestionInList(t, res)
	assert.Empty(t, f.source.queries)
}

func TestSendChatNewSession(t *testing.T) {
	f := newChatFixture(downProvider(), downProvider())

	res, err := f.svc.SendChat(context.Background(), "fresh", &dto.ChatRequest{Message: "Xin chào"})
	require.NoError(t, err)
	assert.Equal(t, response.FallbackReplyEmpty, res.Reply)
	assert.NotNil(t, res.Stores)
	assert.Empty(t, res.Stores)
	assert.Nil(t, res.SuggestedStore)
}

func TestSendChatSessionStoreFailure(t *testing.T) {
	f := newChatFixture(downProvider(), downProvider())
	f.sessions.err = errors.New("connection refused")

	_, err := f.svc.SendChat(context.Background(), "sid", &dto.ChatRequest{Message: "hello"})
	assert.ErrorIs(t, err, f.sessions.err)
	assert.Empty(t, f.publisher.events)
}
