package service

import (
	"context"
	"encoding/json"
	"time"

	"store-locator-be/internal/dto"
	"store-locator-be/internal/entity"
	"store-locator-be/internal/pkg/logger"
	"store-locator-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

// NewConsumerService drains interaction events into the interaction log.
// A nil uowFactory (no database configured) only logs them.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var evt dto.InteractionEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("EVENTS", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	details := map[string]interface{}{
		"session_id": evt.SessionID,
		"kind":       evt.Kind,
		"stores":     len(evt.StoreIDs),
		"mock":       evt.Mock,
	}

	if cs.uowFactory == nil {
		cs.logger.Info("EVENTS", "Interaction received", details)
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	row := &entity.InteractionLog{
		Id:          uuid.New(),
		SessionId:   evt.SessionID,
		Kind:        evt.Kind,
		Lat:         evt.Lat,
		Lng:         evt.Lng,
		Keyword:     evt.Keyword,
		Message:     evt.Message,
		Reply:       evt.Reply,
		Action:      evt.Action,
		StoreIds:    evt.StoreIDs,
		SuggestedId: evt.SuggestedID,
		Mock:        evt.Mock,
		OccurredAt:  evt.OccurredAt,
		CreatedAt:   time.Now(),
	}

	if err := uow.InteractionLogRepository().Create(ctx, row); err != nil {
		details["error"] = err.Error()
		cs.logger.Error("EVENTS", "Failed to persist interaction", details)
		msg.Nack()
		return
	}

	cs.logger.Debug("EVENTS", "Interaction persisted", details)
	msg.Ack()
}
