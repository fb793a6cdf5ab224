package kafka

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
	ErrNoTopics       = errors.New(errors.ErrCodeValidation, "consumer needs at least one topic")
)

const (
	headerOriginalTopic  = "original_topic"
	headerOriginalOffset = "original_offset"
	headerErrorMessage   = "error_message"

	fetchErrorPause = time.Second
)

// Message is a consumed record with its headers flattened.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes one message. Returning an error triggers a retry.
type Handler func(ctx context.Context, msg *Message) error

// RetryPolicy bounds how often a failing handler is re-run. The delay doubles
// after every attempt up to MaxBackoff.
type RetryPolicy struct {
	Retries    int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Retries == 0 {
		p.Retries = 3
	}
	if p.Backoff == 0 {
		p.Backoff = time.Second
	}
	if p.MaxBackoff == 0 {
		p.MaxBackoff = 30 * time.Second
	}
	return p
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.Backoff
	for i := 0; i < attempt && d < p.MaxBackoff; i++ {
		d *= 2
	}
	return min(d, p.MaxBackoff)
}

// ConsumerStats is a point-in-time copy of the consumer counters.
type ConsumerStats struct {
	Consumed     int64
	Processed    int64
	Failed       int64
	Retried      int64
	DeadLettered int64
}

type consumerCounters struct {
	consumed, processed, failed, retried, deadLettered atomic.Int64
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a consumer group and dispatches by topic. Messages whose
// handler keeps failing go to the dead-letter topic when a writer is set, and
// are committed either way so one poison message cannot stall the group.
type Consumer struct {
	reader     messageReader
	deadLetter messageWriter
	dlqTopic   string
	retry      RetryPolicy
	logger     logging.Logger

	mu       sync.RWMutex
	handlers map[string]Handler

	running   atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	counters consumerCounters
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewConsumer joins cfg.GroupID on the given topics (already prefixed).
func NewConsumer(cfg config.KafkaConfig, topics []string, retry RetryPolicy, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg, topics); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	dlq := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	r := kafka.NewReader(readerConfig(cfg, topics))
	return newConsumer(r, dlq, DeadLetterTopic(cfg.TopicPrefix), retry, logger), nil
}

func readerConfig(cfg config.KafkaConfig, topics []string) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		MaxWait:     time.Second,
		StartOffset: kafka.FirstOffset,
		Dialer:      &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	}
}

func newConsumer(r messageReader, dlq messageWriter, dlqTopic string, retry RetryPolicy, logger logging.Logger) *Consumer {
	return &Consumer{
		reader:     r,
		deadLetter: dlq,
		dlqTopic:   dlqTopic,
		retry:      retry.withDefaults(),
		logger:     logger.Named("kafka-consumer"),
		handlers:   make(map[string]Handler),
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Subscribe routes messages of topic to handler, replacing any earlier one.
func (c *Consumer) Subscribe(topic string, handler Handler) {
	c.mu.Lock()
	c.handlers[topic] = handler
	c.mu.Unlock()
	c.logger.Info("subscribed", logging.String("topic", topic))
}

// Start launches the consume loop in the background.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.run(ctx)
	c.logger.Info("consumer started")
	return nil
}

func (c *Consumer) run(ctx context.Context) {
	defer c.wg.Done()
	for ctx.Err() == nil {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			if c.sleep(ctx, fetchErrorPause) != nil {
				return
			}
			continue
		}
		c.counters.consumed.Add(1)
		c.handle(ctx, m)
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", logging.String("topic", m.Topic), logging.Int64("offset", m.Offset), logging.Err(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	c.mu.RLock()
	handler, ok := c.handlers[m.Topic]
	c.mu.RUnlock()
	if !ok {
		c.logger.Warn("no handler for topic", logging.String("topic", m.Topic))
		return
	}

	if err := c.process(ctx, toMessage(m), handler); err != nil {
		c.counters.failed.Add(1)
		c.logger.Error("message failed after retries",
			logging.String("topic", m.Topic),
			logging.Int64("offset", m.Offset),
			logging.Err(err))
		c.toDeadLetter(ctx, m, err)
		return
	}
	c.counters.processed.Add(1)
}

func (c *Consumer) process(ctx context.Context, msg *Message, handler Handler) error {
	for attempt := 0; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil || attempt >= c.retry.Retries {
			return err
		}
		c.counters.retried.Add(1)
		d := c.retry.delay(attempt)
		c.logger.Debug("retrying message",
			logging.String("topic", msg.Topic),
			logging.Int("attempt", attempt+1),
			logging.Duration("delay", d),
			logging.Err(err))
		if serr := c.sleep(ctx, d); serr != nil {
			return serr
		}
	}
}

func (c *Consumer) toDeadLetter(ctx context.Context, m kafka.Message, cause error) {
	if c.deadLetter == nil || c.dlqTopic == "" {
		return
	}
	headers := make([]kafka.Header, 0, len(m.Headers)+3)
	headers = append(headers, m.Headers...)
	headers = append(headers,
		kafka.Header{Key: headerOriginalTopic, Value: []byte(m.Topic)},
		kafka.Header{Key: headerOriginalOffset, Value: []byte(strconv.FormatInt(m.Offset, 10))},
		kafka.Header{Key: headerErrorMessage, Value: []byte(cause.Error())},
	)
	dl := kafka.Message{Topic: c.dlqTopic, Key: m.Key, Value: m.Value, Headers: headers}
	if err := c.deadLetter.WriteMessages(ctx, dl); err != nil {
		c.logger.Error("dead-letter write failed", logging.String("topic", c.dlqTopic), logging.Err(err))
		return
	}
	c.counters.deadLettered.Add(1)
}

func toMessage(m kafka.Message) *Message {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Headers:   headers,
		Timestamp: m.Time,
	}
}

// Stats returns the current counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Consumed:     c.counters.consumed.Load(),
		Processed:    c.counters.processed.Load(),
		Failed:       c.counters.failed.Load(),
		Retried:      c.counters.retried.Load(),
		DeadLettered: c.counters.deadLettered.Load(),
	}
}

// Close stops the loop, waits for the in-flight message and closes the reader.
func (c *Consumer) Close() error {
	if c.running.CompareAndSwap(true, false) {
		c.cancel()
		c.wg.Wait()
	}
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
		if c.deadLetter != nil {
			if derr := c.deadLetter.Close(); derr != nil {
				c.logger.Warn("dead-letter writer close failed", logging.Err(derr))
			}
		}
		c.logger.Info("consumer closed", logging.Int64("consumed", c.counters.consumed.Load()))
	})
	return err
}

// ValidateConsumerConfig checks the settings a group reader needs.
func ValidateConsumerConfig(cfg config.KafkaConfig, topics []string) error {
	if err := requireBrokers(cfg); err != nil {
		return err
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "kafka group_id required")
	}
	if len(topics) == 0 {
		return ErrNoTopics
	}
	return nil
}

//Personal.AI order the ending
