package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/pkg/errors"
)

// Topic names.
const (
	TopicControlsState   = "chargeview.controls.state"
	TopicStructureLoaded = "chargeview.structure.loaded"
)

// Event types carried in EventEnvelope.EventType.
const (
	EventControlsChanged = "controls.changed"
	EventStructureLoaded = "structure.loaded"
)

// SchemaVersion is stamped on every envelope.
const SchemaVersion = "v1"

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEventEnvelope marshals payload into a fresh envelope.
func NewEventEnvelope(eventType string, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.  An empty payload is a
// no-op.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal payload")
	}
	return nil
}

// ToMessage serializes the envelope for topic.  The message key is key when
// non-empty so all events of one session land on one partition.
func (e *EventEnvelope) ToMessage(topic, key string) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	headers := map[string]string{
		"event_type":     e.EventType,
		"source_service": e.Source,
		"schema_version": e.SchemaVersion,
	}
	if e.TraceID != "" {
		headers["trace_id"] = e.TraceID
	}
	msg := &ProducerMessage{
		Topic:     topic,
		Value:     val,
		Headers:   headers,
		Timestamp: e.Timestamp,
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}

// DecodeEnvelope parses a message value produced by ToMessage.
func DecodeEnvelope(value []byte) (*EventEnvelope, error) {
	if len(value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Topic management
// ─────────────────────────────────────────────────────────────────────────────

// TopicConfig describes a topic to create.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
	MaxMessageBytes   int
	Configs           map[string]string
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	DeleteTopics(topics ...string) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager manages Kafka topics.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

// NewTopicManager dials the first broker.
func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to dial kafka")
	}
	return NewTopicManagerWithConn(conn, logger), nil
}

// NewTopicManagerWithConn wraps an existing connection.
func NewTopicManagerWithConn(conn ConnInterface, logger logging.Logger) *TopicManager {
	return &TopicManager{conn: conn, logger: logger}
}

// CreateTopic creates cfg.  An existing topic is not an error.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if cfg.Name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if cfg.NumPartitions <= 0 {
		return errors.New(errors.ErrCodeValidation, "NumPartitions must be > 0")
	}
	if cfg.ReplicationFactor <= 0 {
		return errors.New(errors.ErrCodeValidation, "ReplicationFactor must be > 0")
	}

	kCfg := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
		ConfigEntries:     make([]kafka.ConfigEntry, 0),
	}
	if cfg.RetentionMs > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "retention.ms", ConfigValue: fmt.Sprintf("%d", cfg.RetentionMs)})
	}
	if cfg.CleanupPolicy != "" {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "cleanup.policy", ConfigValue: cfg.CleanupPolicy})
	}
	if cfg.MaxMessageBytes > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "max.message.bytes", ConfigValue: fmt.Sprintf("%d", cfg.MaxMessageBytes)})
	}
	for k, v := range cfg.Configs {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: k, ConfigValue: v})
	}

	if err := m.conn.CreateTopics(kCfg); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to create topic").WithDetail(cfg.Name)
	}
	m.logger.Info("topic created", logging.String("topic", cfg.Name))
	return nil
}

// TopicExists reports whether name has at least one partition.
func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

// EnsureTopics creates every topic in order, stopping at the first failure.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	for _, topic := range topics {
		if err := m.CreateTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the connection.
func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics returns the chargeview topics.  State events are compacted
// by key so a late subscriber still sees the latest state of each session.
func DefaultTopics(replication int) []TopicConfig {
	if replication <= 0 {
		replication = 1
	}
	return []TopicConfig{
		{Name: TopicControlsState, NumPartitions: 3, ReplicationFactor: replication, CleanupPolicy: "compact"},
		{Name: TopicStructureLoaded, NumPartitions: 3, ReplicationFactor: replication, RetentionMs: 7 * 24 * 3600 * 1000},
	}
}

//Personal.AI order the ending
