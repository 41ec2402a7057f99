package controls

import (
	"context"

	"github.com/turtacn/chargeview/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/prometheus"
)

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *kafka.ProducerMessage) error
}

// EventPublisher forwards state events to Kafka.  Load events also go to the
// structure topic.
type EventPublisher struct {
	producer   MessagePublisher
	source     string
	stateTopic string
	logger     logging.Logger
	metrics    *prometheus.ViewerMetrics
}

// NewEventPublisher creates a publisher stamping source on every envelope.
func NewEventPublisher(p MessagePublisher, source string, logger logging.Logger) *EventPublisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EventPublisher{
		producer:   p,
		source:     source,
		stateTopic: kafka.TopicControlsState,
		logger:     logger.Named("events"),
	}
}

// WithTopic overrides the control-state topic.  Empty keeps the default.
func (p *EventPublisher) WithTopic(topic string) *EventPublisher {
	if topic != "" {
		p.stateTopic = topic
	}
	return p
}

// WithMetrics records every publish attempt made by Run on m.
func (p *EventPublisher) WithMetrics(m *prometheus.ViewerMetrics) *EventPublisher {
	p.metrics = m
	return p
}

// Publish sends ev keyed by its structure so one structure's events stay
// ordered on one partition.
func (p *EventPublisher) Publish(ctx context.Context, ev StateEvent) error {
	if err := p.send(ctx, p.stateTopic, kafka.EventControlsChanged, ev); err != nil {
		return err
	}
	if ev.Operation == OpLoad {
		return p.send(ctx, kafka.TopicStructureLoaded, kafka.EventStructureLoaded, ev)
	}
	return nil
}

func (p *EventPublisher) send(ctx context.Context, topic, eventType string, ev StateEvent) error {
	env, err := kafka.NewEventEnvelope(eventType, p.source, ev)
	if err != nil {
		return err
	}
	env.Metadata = map[string]string{"operation": ev.Operation}
	msg, err := env.ToMessage(topic, ev.State.Structure)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// Run publishes events until ctx is done or events is closed.  Failed
// publishes are logged and skipped.
func (p *EventPublisher) Run(ctx context.Context, events <-chan StateEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			err := p.Publish(ctx, ev)
			p.metrics.RecordEvent("kafka", err)
			if err != nil {
				p.logger.Warn("failed to publish state event",
					logging.String("event_id", ev.ID),
					logging.String("operation", ev.Operation),
					logging.Err(err))
			}
		}
	}
}

//Personal.AI order the ending
