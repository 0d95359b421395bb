package events

import (
	"context"

	"store-locator-be/internal/pkg/logger"
)

// Sink is anything that can ship an event off-process (NATS JetStream).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher fans interaction events out to an optional external sink.
// Publishing is best effort: failures are logged and never returned.
type Publisher struct {
	sink   Sink
	logger logger.ILogger
}

// NewPublisher accepts a nil sink, which turns every call into a no-op.
func NewPublisher(sink Sink, log logger.ILogger) *Publisher {
	return &Publisher{sink: sink, logger: log}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.sink != nil
}

func (p *Publisher) Publish(ctx context.Context, evt Event) {
	if !p.Enabled() {
		return
	}
	if err := p.sink.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+evt.EventType()+" event", map[string]interface{}{"error": err.Error()})
	}
}
