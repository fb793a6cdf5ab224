package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/location"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

const (
	keyLocationSet     = "locations:set:"
	keyLocationCurrent = "locations:current"
	keyLocationHistory = "locations:history"
)

// LocationStore keeps identified location sets in Redis. Every set is a JSON
// string keyed by tag, the latest tag is tracked separately and the history
// is a capped list, oldest first.
type LocationStore struct {
	client      *Client
	logger      logging.Logger
	prefix      string
	ttl         time.Duration
	historySize int
}

// LocationStoreOption configures a LocationStore.
type LocationStoreOption func(*LocationStore)

// WithLocationTTL expires stored sets after ttl. Zero keeps them forever.
func WithLocationTTL(ttl time.Duration) LocationStoreOption {
	return func(s *LocationStore) { s.ttl = ttl }
}

// WithHistorySize caps the history list at n entries. Non-positive n is ignored.
func WithHistorySize(n int) LocationStoreOption {
	return func(s *LocationStore) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithKeyPrefix namespaces every key the store writes.
func WithKeyPrefix(prefix string) LocationStoreOption {
	return func(s *LocationStore) { s.prefix = prefix }
}

// NewLocationStore creates a store over client with the "resonance:" prefix
// and the default history size.
func NewLocationStore(client *Client, log logging.Logger, opts ...LocationStoreOption) *LocationStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &LocationStore{
		client:      client,
		logger:      log.Named("location-store"),
		prefix:      "resonance:",
		historySize: location.DefaultHistorySize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *LocationStore) setKey(tag string) string { return s.prefix + keyLocationSet + tag }
func (s *LocationStore) currentKey() string       { return s.prefix + keyLocationCurrent }
func (s *LocationStore) historyKey() string       { return s.prefix + keyLocationHistory }

// Save stores the set, marks it current and appends it to the history in a
// single transaction.
func (s *LocationStore) Save(ctx context.Context, set *location.Identified) error {
	rdb, err := s.client.RDB()
	if err != nil {
		return err
	}
	data, err := json.Marshal(set)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode identified locations")
	}
	entry, err := json.Marshal(set.Entry())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode history entry")
	}

	_, err = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.setKey(set.Tag), string(data), s.ttl)
		p.Set(ctx, s.currentKey(), set.Tag, 0)
		p.RPush(ctx, s.historyKey(), string(entry))
		p.LTrim(ctx, s.historyKey(), int64(-s.historySize), -1)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to save identified locations")
	}
	s.logger.Debug("identified locations stored", logging.Tag(set.Tag), logging.Int("locations", set.TotalLocations))
	return nil
}

// Get returns the set under tag, or the current set when tag is empty.
func (s *LocationStore) Get(ctx context.Context, tag string) (*location.Identified, error) {
	rdb, err := s.client.RDB()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		tag, err = rdb.Get(ctx, s.currentKey()).Result()
		if err != nil {
			return nil, notFoundOr(err)
		}
	}
	data, err := rdb.Get(ctx, s.setKey(tag)).Bytes()
	if err != nil {
		return nil, notFoundOr(err)
	}
	var set location.Identified
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "stored identified locations are corrupt")
	}
	return &set, nil
}

// History returns up to historySize entries, oldest first.
func (s *LocationStore) History(ctx context.Context) ([]location.HistoryEntry, error) {
	rdb, err := s.client.RDB()
	if err != nil {
		return nil, err
	}
	raw, err := rdb.LRange(ctx, s.historyKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read location history")
	}
	out := make([]location.HistoryEntry, 0, len(raw))
	for _, r := range raw {
		var e location.HistoryEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			s.logger.Warn("skipping corrupt history entry", logging.Err(err))
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func notFoundOr(err error) error {
	if stderrors.Is(err, redis.Nil) {
		return errors.New(errors.ErrCodeLocationsNotFound,
			"No identified locations found. Please run a location filter first.")
	}
	return errors.Wrap(err, errors.ErrCodeCacheError, "failed to read identified locations")
}

//Personal.AI order the ending
