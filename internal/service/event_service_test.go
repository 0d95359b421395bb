package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"store-locator-be/internal/dto"
	"store-locator-be/internal/entity"
	"store-locator-be/internal/pkg/logger"
	"store-locator-be/internal/repository/contract"
	"store-locator-be/internal/repository/specification"
	"store-locator-be/internal/repository/unitofwork"
	"store-locator-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingBus struct {
	topic    string
	messages []*message.Message
}

func (b *capturingBus) Publish(topic string, msgs ...*message.Message) error {
	b.topic = topic
	b.messages = append(b.messages, msgs...)
	return nil
}

func (b *capturingBus) Close() error { return nil }

type capturingSink struct {
	got []events.Event
}

func (s *capturingSink) Publish(ctx context.Context, e events.Event) error {
	s.got = append(s.got, e)
	return nil
}

type fakeLogRepo struct {
	rows       []*entity.InteractionLog
	err        error
	findSpecs  []specification.Specification
	countSpecs []specification.Specification
}

func (r *fakeLogRepo) Create(ctx context.Context, l *entity.InteractionLog) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, l)
	return nil
}

func (r *fakeLogRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InteractionLog, error) {
	r.findSpecs = specs
	if r.err != nil {
		return nil, r.err
	}
	return r.rows, nil
}

func (r *fakeLogRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.countSpecs = specs
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.rows)), nil
}

type fakeUow struct{ repo *fakeLogRepo }

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }
func (u *fakeUow) InteractionLogRepository() contract.InteractionLogRepository {
	return u.repo
}

type fakeFactory struct{ repo *fakeLogRepo }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{repo: f.repo}
}

func TestPublisherServiceFansOut(t *testing.T) {
	bus := &capturingBus{}
	sink := &capturingSink{}
	svc := NewPublisherService(bus, "topic", events.NewPublisher(sink, logger.NewNop()), logger.NewNop())

	svc.Publish(context.Background(), dto.InteractionEvent{SessionID: "sid", Kind: dto.InteractionChat, Action: dto.ChatActionUpdateMap})

	require.Len(t, bus.messages, 1)
	assert.Equal(t, "topic", bus.topic)
	var evt dto.InteractionEvent
	require.NoError(t, json.Unmarshal(bus.messages[0].Payload, &evt))
	assert.Equal(t, "sid", evt.SessionID)
	assert.NotNil(t, evt.StoreIDs)
	assert.False(t, evt.OccurredAt.IsZero())

	require.Len(t, sink.got, 1)
	assert.Equal(t, events.TypeChatAnswered, sink.got[0].EventType())
	assert.Equal(t, "update_map", sink.got[0].Payload()["action"])
}

func TestPublisherServiceWithoutNats(t *testing.T) {
	bus := &capturingBus{}
	svc := NewPublisherService(bus, "topic", events.NewPublisher(nil, logger.NewNop()), logger.NewNop())
	svc.Publish(context.Background(), dto.InteractionEvent{Kind: dto.InteractionSearch})
	assert.Len(t, bus.messages, 1)
}

func acked(msg *message.Message) bool {
	select {
	case <-msg.Acked():
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func nacked(msg *message.Message) bool {
	select {
	case <-msg.Nacked():
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func interactionMessage(t *testing.T, evt dto.InteractionEvent) *message.Message {
	t.Helper()
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	return message.NewMessage("1", payload)
}

func TestConsumerPersistsInteraction(t *testing.T) {
	repo := &fakeLogRepo{}
	cs := NewConsumerService(nil, "topic", &fakeFactory{repo: repo}, logger.NewNop()).(*consumerService)

	lat := 10.77
	msg := interactionMessage(t, dto.InteractionEvent{
		SessionID: "sid", Kind: dto.InteractionSearch, Lat: &lat, StoreIDs: []string{"mock_0"}, Mock: true,
	})
	cs.processMessage(context.Background(), msg)

	assert.True(t, acked(msg))
	require.Len(t, repo.rows, 1)
	assert.Equal(t, "sid", repo.rows[0].SessionId)
	assert.True(t, repo.rows[0].Mock)
	assert.Equal(t, []string{"mock_0"}, repo.rows[0].StoreIds)
}

func TestConsumerNacksOnRepositoryError(t *testing.T) {
	repo := &fakeLogRepo{err: errors.New("db down")}
	cs := NewConsumerService(nil, "topic", &fakeFactory{repo: repo}, logger.NewNop()).(*consumerService)

	msg := interactionMessage(t, dto.InteractionEvent{SessionID: "sid", Kind: dto.InteractionChat})
	cs.processMessage(context.Background(), msg)
	assert.True(t, nacked(msg))
}

func TestConsumerAcksGarbageAndLogOnly(t *testing.T) {
	cs := NewConsumerService(nil, "topic", nil, logger.NewNop()).(*consumerService)

	garbage := message.NewMessage("1", []byte("{"))
	cs.processMessage(context.Background(), garbage)
	assert.True(t, acked(garbage))

	msg := interactionMessage(t, dto.InteractionEvent{SessionID: "sid", Kind: dto.InteractionChat})
	cs.processMessage(context.Background(), msg)
	assert.True(t, acked(msg))
}
