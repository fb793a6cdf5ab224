package kafka

import (
	"context"
	stderrors "errors"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/event"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

const (
	topicDeadLetter = "dead_letter"
	day             = 24 * time.Hour
)

// TopicName joins the deployment prefix and a domain topic.
func TopicName(prefix, topic string) string { return prefix + topic }

// DeadLetterTopic is where the worker parks messages it gave up on.
func DeadLetterTopic(prefix string) string { return TopicName(prefix, topicDeadLetter) }

// TopicConfig describes a topic to provision. Zero Retention keeps the
// broker default.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	Retention         time.Duration
}

func (c TopicConfig) validate() error {
	if c.Name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if c.NumPartitions <= 0 || c.ReplicationFactor <= 0 {
		return errors.Newf(errors.ErrCodeValidation, "topic %s: partitions and replication factor must be > 0", c.Name)
	}
	return nil
}

func (c TopicConfig) toKafka() kafka.TopicConfig {
	tc := kafka.TopicConfig{Topic: c.Name, NumPartitions: c.NumPartitions, ReplicationFactor: c.ReplicationFactor}
	if c.Retention > 0 {
		tc.ConfigEntries = []kafka.ConfigEntry{{
			ConfigName:  "retention.ms",
			ConfigValue: strconv.FormatInt(c.Retention.Milliseconds(), 10),
		}}
	}
	return tc
}

// DefaultTopics are the event topics plus the dead-letter topic, which is
// kept longer so failed report jobs can be replayed.
func DefaultTopics(prefix string) []TopicConfig {
	return []TopicConfig{
		{Name: TopicName(prefix, event.TopicAnalysisCompleted), NumPartitions: 3, ReplicationFactor: 1, Retention: 7 * day},
		{Name: TopicName(prefix, event.TopicLocationsIdentified), NumPartitions: 3, ReplicationFactor: 1, Retention: 7 * day},
		{Name: DeadLetterTopic(prefix), NumPartitions: 1, ReplicationFactor: 1, Retention: 30 * day},
	}
}

// ConnInterface is the part of *kafka.Conn the manager uses.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager provisions topics on the cluster controller.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

// NewTopicManager dials the first broker, asks it for the controller and
// keeps a connection to the controller, since only it accepts CreateTopics.
func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	seed, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessagingError, "failed to dial kafka").WithDetail(brokers[0])
	}
	defer seed.Close()

	ctrl, err := seed.Controller()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessagingError, "failed to find kafka controller")
	}
	conn, err := kafka.Dial("tcp", net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessagingError, "failed to dial kafka controller")
	}
	return &TopicManager{conn: conn, logger: logger.Named("kafka-topics")}, nil
}

// CreateTopic creates one topic; an existing topic is not an error.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	return m.create(ctx, []TopicConfig{cfg})
}

// EnsureTopics creates the topics that do not exist yet in one request.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	var missing []TopicConfig
	for _, t := range topics {
		if err := t.validate(); err != nil {
			return err
		}
		if ok, _ := m.TopicExists(ctx, t.Name); ok {
			m.logger.Debug("topic exists", logging.String("topic", t.Name))
			continue
		}
		missing = append(missing, t)
	}
	if len(missing) == 0 {
		return nil
	}
	return m.create(ctx, missing)
}

func (m *TopicManager) create(ctx context.Context, topics []TopicConfig) error {
	req := make([]kafka.TopicConfig, len(topics))
	for i, t := range topics {
		req[i] = t.toKafka()
	}
	err := m.conn.CreateTopics(req...)
	if err != nil && !stderrors.Is(err, kafka.TopicAlreadyExists) {
		// A concurrent worker may have won the race.
		for _, t := range topics {
			if ok, _ := m.TopicExists(ctx, t.Name); !ok {
				return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to create topic").WithDetail(t.Name)
			}
		}
	}
	for _, t := range topics {
		m.logger.Info("topic ready", logging.String("topic", t.Name), logging.Duration("retention", t.Retention))
	}
	return nil
}

// TopicExists treats a metadata error as absence.
func (m *TopicManager) TopicExists(_ context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

func (m *TopicManager) Close() error { return m.conn.Close() }

//Personal.AI order the ending
