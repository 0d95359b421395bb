package service

import (
	"context"
	"encoding/json"
	"time"

	"store-locator-be/internal/dto"
	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	Publish(ctx context.Context, evt dto.InteractionEvent)
}

type publisherService struct {
	bus       message.Publisher
	topicName string
	external  *events.Publisher
	logger    logger.ILogger
}

// NewPublisherService publishes interaction events on the in-process bus and,
// when external is enabled, mirrors them to NATS. Both paths are best effort.
func NewPublisherService(bus message.Publisher, topicName string, external *events.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		bus:       bus,
		topicName: topicName,
		external:  external,
		logger:    log,
	}
}

func (p *publisherService) Publish(ctx context.Context, evt dto.InteractionEvent) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	if evt.StoreIDs == nil {
		evt.StoreIDs = []string{}
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("EVENTS", "Failed to marshal interaction event", map[string]interface{}{"error": err.Error()})
		return
	}

	if p.bus != nil {
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := p.bus.Publish(p.topicName, msg); err != nil {
			p.logger.Error("EVENTS", "Failed to publish interaction event", map[string]interface{}{
				"session_id": evt.SessionID,
				"kind":       evt.Kind,
				"error":      err.Error(),
			})
		}
	}

	if p.external.Enabled() {
		var data map[string]interface{}
		if err := json.Unmarshal(payload, &data); err == nil {
			p.external.Publish(ctx, events.BaseEvent{
				Type:       eventTypeFor(evt.Kind),
				Data:       data,
				OccurredAt: evt.OccurredAt,
			})
		}
	}
}

func eventTypeFor(kind string) string {
	switch kind {
	case dto.InteractionKeyword:
		return events.TypeKeywordSearch
	case dto.InteractionChat:
		return events.TypeChatAnswered
	default:
		return events.TypeStoresSearched
	}
}
