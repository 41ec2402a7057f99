// Package kafka publishes chargeview control-state events to Kafka through
// segmentio/kafka-go.
package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/pkg/errors"
)

var (
	ErrProducerClosed = errors.New(errors.ErrCodeMessageQueueError, "producer closed")
	ErrPublishFailed  = errors.New(errors.ErrCodeMessageQueueError, "publish failed")
)

// ProducerMessage is one outgoing record.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
	Partition int
}

// BatchItemError reports a failed record of a batch.  Index is -1 when the
// whole batch failed.
type BatchItemError struct {
	Index int
	Topic string
	Error error
}

// BatchPublishResult summarises PublishBatch.
type BatchPublishResult struct {
	Succeeded int
	Failed    int
	Errors    []BatchItemError
}

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers           []string
	Acks              string
	MaxRetries        int
	RetryBackoff      time.Duration
	BatchSize         int
	BatchTimeout      time.Duration
	MaxMessageBytes   int
	CompressionCodec  string
	WriteTimeout      time.Duration
	ReadTimeout       time.Duration
	SASLEnabled       bool
	SASLMechanism     string
	SASLUsername      string
	SASLPassword      string
	TLSEnabled        bool
	TLSCertPath       string
	AsyncErrorHandler func(err error, msg *ProducerMessage)
}

// ProducerMetrics holds producer metrics.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
	LastSentAt     atomic.Value // time.Time
	AvgLatencyMs   atomic.Int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// Producer manages message production.
type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	closed  atomic.Bool
	metrics *ProducerMetrics
}

// NewProducer creates a new Producer.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	cfg = withProducerDefaults(cfg)

	transport := &kafka.Transport{
		DialTimeout: 10 * time.Second,
	}
	if cfg.TLSEnabled {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if cfg.TLSCertPath != "" {
			caCert, err := os.ReadFile(cfg.TLSCertPath)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to read kafka CA certificate")
			}
			pool := x509.NewCertPool()
			pool.AppendCertsFromPEM(caCert)
			tlsConfig.RootCAs = pool
		}
		transport.TLS = tlsConfig
	}
	if cfg.SASLEnabled {
		mech, err := saslMechanism(cfg)
		if err != nil {
			return nil, err
		}
		transport.SASL = mech
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		RequiredAcks: requiredAcks(cfg.Acks),
		Compression:  compression(cfg.CompressionCodec),
		Transport:    transport,
	}

	return NewProducerWithWriter(writer, cfg, logger), nil
}

// NewProducerWithWriter builds a Producer over an existing writer.
func NewProducerWithWriter(w WriterInterface, cfg ProducerConfig, logger logging.Logger) *Producer {
	return &Producer{
		writer:  w,
		config:  withProducerDefaults(cfg),
		logger:  logger,
		metrics: &ProducerMetrics{},
	}
}

func withProducerDefaults(cfg ProducerConfig) ProducerConfig {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		// state events are latency sensitive; the kafka-go default is 1s
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 1024 * 1024
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	return cfg
}

func saslMechanism(cfg ProducerConfig) (sasl.Mechanism, error) {
	var (
		mech sasl.Mechanism
		err  error
	)
	switch cfg.SASLMechanism {
	case "PLAIN":
		mech = plain.Mechanism{Username: cfg.SASLUsername, Password: cfg.SASLPassword}
	case "SCRAM-SHA-256":
		mech, err = scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
	case "SCRAM-SHA-512":
		mech, err = scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
	default:
		return nil, errors.New(errors.ErrCodeValidation, "unsupported SASL mechanism").WithDetail(cfg.SASLMechanism)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to create SASL mechanism")
	}
	return mech, nil
}

func requiredAcks(acks string) kafka.RequiredAcks {
	switch acks {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

func compression(codec string) kafka.Compression {
	switch codec {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Compression(0)
	}
}

// Publish publishes a single message.
func (p *Producer) Publish(ctx context.Context, msg *ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if msg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic required")
	}
	if len(msg.Value) == 0 {
		return errors.New(errors.ErrCodeValidation, "value required")
	}
	if len(msg.Value) > p.config.MaxMessageBytes {
		return errors.New(errors.ErrCodeValidation, "message too large")
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, p.toKafkaMessage(msg)); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return ErrPublishFailed.WithCause(err).WithDetail(msg.Topic)
	}

	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(msg.Value)))
	p.metrics.LastSentAt.Store(time.Now())

	latency := time.Since(start).Milliseconds()
	p.metrics.AvgLatencyMs.Store(latency)

	p.logger.Debug("message published",
		logging.String("topic", msg.Topic),
		logging.Int64("latency_ms", latency))
	return nil
}

// PublishBatch publishes multiple messages.  Partial failures are reported
// in the result, not as an error.
func (p *Producer) PublishBatch(ctx context.Context, msgs []*ProducerMessage) (*BatchPublishResult, error) {
	if p.closed.Load() {
		return nil, ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "messages empty")
	}

	kMsgs := make([]kafka.Message, len(msgs))
	for i, msg := range msgs {
		kMsgs[i] = p.toKafkaMessage(msg)
	}

	result := &BatchPublishResult{}
	err := p.writer.WriteMessages(ctx, kMsgs...)
	switch werr := err.(type) {
	case nil:
		result.Succeeded = len(msgs)
	case kafka.WriteErrors:
		for i, e := range werr {
			if e != nil {
				result.Failed++
				result.Errors = append(result.Errors, BatchItemError{Index: i, Topic: msgs[i].Topic, Error: e})
			} else {
				result.Succeeded++
			}
		}
	default:
		result.Failed = len(msgs)
		result.Errors = append(result.Errors, BatchItemError{Index: -1, Error: err})
	}

	p.metrics.MessagesSent.Add(int64(result.Succeeded))
	p.metrics.MessagesFailed.Add(int64(result.Failed))

	p.logger.Info("batch published",
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

// PublishAsync publishes in a goroutine.  Failures go to AsyncErrorHandler.
func (p *Producer) PublishAsync(ctx context.Context, msg *ProducerMessage) {
	go func() {
		err := p.Publish(ctx, msg)
		if err != nil && p.config.AsyncErrorHandler != nil {
			p.config.AsyncErrorHandler(err, msg)
		}
	}()
}

// GetMetrics returns a metrics snapshot.
func (p *Producer) GetMetrics() *ProducerMetrics {
	m := &ProducerMetrics{}
	m.MessagesSent.Store(p.metrics.MessagesSent.Load())
	m.MessagesFailed.Store(p.metrics.MessagesFailed.Load())
	m.BytesSent.Store(p.metrics.BytesSent.Load())
	m.AvgLatencyMs.Store(p.metrics.AvgLatencyMs.Load())
	if ts := p.metrics.LastSentAt.Load(); ts != nil {
		m.LastSentAt.Store(ts)
	}
	return m
}

// Close closes the producer.  Further calls are no-ops.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

func (p *Producer) toKafkaMessage(msg *ProducerMessage) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{
		Topic:     msg.Topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Time:      ts,
		Partition: msg.Partition,
	}
}

// ValidateProducerConfig checks the settings NewProducer cannot default.
func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "MaxRetries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
