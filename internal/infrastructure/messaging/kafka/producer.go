package kafka

import (
	"cmp"
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/event"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeMessagingError, "producer closed")

const (
	headerEventID     = "event_id"
	headerEventType   = "event_type"
	headerContentType = "content_type"
	contentTypeJSON   = "application/json"

	defaultMaxRetries      = 3
	defaultBatchTimeout    = 50 * time.Millisecond
	defaultWriteTimeout    = 10 * time.Second
	defaultMaxMessageBytes = 1 << 20
)

// ProducerStats is a point-in-time copy of the producer counters.
type ProducerStats struct {
	Sent       int64
	Failed     int64
	Bytes      int64
	LastSentAt time.Time
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes domain events as JSON. The message key is the event's
// aggregate id so every event for one analysis or location set lands on the
// same partition.
type Producer struct {
	writer      messageWriter
	topicPrefix string
	maxBytes    int
	logger      logging.Logger
	closed      atomic.Bool

	sent, failed, bytes atomic.Int64
	lastSent            atomic.Int64 // unix nanos
}

var _ event.Publisher = (*Producer)(nil)

// NewProducer creates a Producer writing to the configured brokers.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		MaxAttempts:            cmp.Or(cfg.MaxRetries, defaultMaxRetries) + 1,
		BatchTimeout:           cmp.Or(cfg.BatchTimeout, defaultBatchTimeout),
		WriteTimeout:           cmp.Or(cfg.WriteTimeout, defaultWriteTimeout),
		RequiredAcks:           requiredAcks(cfg.Acks),
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	return newProducer(w, cfg.TopicPrefix, logger), nil
}

func newProducer(w messageWriter, prefix string, logger logging.Logger) *Producer {
	return &Producer{
		writer:      w,
		topicPrefix: prefix,
		maxBytes:    defaultMaxMessageBytes,
		logger:      logger.Named("kafka-producer"),
	}
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

// Publish encodes e and writes it to the prefixed topic.
func (p *Producer) Publish(ctx context.Context, e event.Event) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if e == nil || e.Topic() == "" {
		return errors.New(errors.ErrCodeValidation, "event topic required")
	}
	value, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event")
	}
	if len(value) > p.maxBytes {
		return errors.Newf(errors.ErrCodeValidation, "event %s is %d bytes, limit %d", e.Topic(), len(value), p.maxBytes)
	}

	return p.write(ctx, kafka.Message{
		Topic: TopicName(p.topicPrefix, e.Topic()),
		Key:   []byte(e.AggregateID()),
		Value: value,
		Headers: []kafka.Header{
			{Key: headerEventID, Value: []byte(e.EventID())},
			{Key: headerEventType, Value: []byte(e.Topic())},
			{Key: headerContentType, Value: []byte(contentTypeJSON)},
		},
		Time: e.OccurredAt(),
	})
}

func (p *Producer) write(ctx context.Context, msg kafka.Message) error {
	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessagingError, "publish failed").WithDetail(msg.Topic)
	}
	p.sent.Add(1)
	p.bytes.Add(int64(len(msg.Value)))
	p.lastSent.Store(time.Now().UnixNano())

	p.logger.Debug("event published",
		logging.String("topic", msg.Topic),
		logging.String("key", string(msg.Key)),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// Stats returns the current counters.
func (p *Producer) Stats() ProducerStats {
	s := ProducerStats{Sent: p.sent.Load(), Failed: p.failed.Load(), Bytes: p.bytes.Load()}
	if ns := p.lastSent.Load(); ns != 0 {
		s.LastSentAt = time.Unix(0, ns)
	}
	return s
}

// Close flushes and closes the writer. Later calls are no-ops.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("producer closed", logging.Int64("sent", p.sent.Load()))
	return err
}

// ValidateProducerConfig checks the settings a writer needs.
func ValidateProducerConfig(cfg config.KafkaConfig) error {
	if err := requireBrokers(cfg); err != nil {
		return err
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "kafka max_retries must be >= 0")
	}
	return nil
}

func requireBrokers(cfg config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	return nil
}

//Personal.AI order the ending
