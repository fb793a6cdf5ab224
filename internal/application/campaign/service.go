package campaign

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/event"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// ContentTypeJSON is the media type of stored tables.
const ContentTypeJSON = "application/json"

// AnalysisResult is returned after a table has been built and stored.
type AnalysisResult struct {
	Status      string           `json:"status"`
	Message     string           `json:"message"`
	ArtifactKey string           `json:"artifact_filename"`
	Version     string           `json:"artifact_version"`
	Summary     analysis.Summary `json:"analysis_summary"`
	NextSteps   []string         `json:"next_steps"`
}

// Service runs analyses and serves the views derived from stored tables. An
// empty key addresses the most recent analysis.
type Service interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
	Load(ctx context.Context, key string) (*analysis.Table, error)
	List(ctx context.Context, limit int) ([]*analysis.Metadata, error)
	Summary(ctx context.Context, key string) (*analysis.Summary, error)
	Structure(ctx context.Context, key string) (*analysis.DataStructure, error)
	Rally(ctx context.Context, key string) (*RallyReport, error)
	Goldmine(ctx context.Context, key string) (*GoldmineReport, error)
}

type service struct {
	builder   *Builder
	artifacts ArtifactStore
	repo      AnalysisRepository
	publisher event.Publisher
	logger    logging.Logger
	metrics   MetricsCollector
	now       func() time.Time

	mu     sync.RWMutex
	latest string
}

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithRepository indexes analysis metadata in repo.
func WithRepository(repo AnalysisRepository) ServiceOption {
	return func(s *service) { s.repo = repo }
}

// WithPublisher emits analysis events through p.
func WithPublisher(p event.Publisher) ServiceOption {
	return func(s *service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) ServiceOption {
	return func(s *service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService creates the campaign service.
func NewService(builder *Builder, artifacts ArtifactStore, logger logging.Logger, opts ...ServiceOption) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &service{
		builder:   builder,
		artifacts: artifacts,
		publisher: event.NopPublisher{},
		logger:    logger.Named("campaign"),
		metrics:   noopMetrics{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	t, err := s.builder.Build(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := analysis.Encode(t)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode analysis")
	}
	version, err := s.artifacts.Save(ctx, t.Meta.Key, data, ContentTypeJSON)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to store analysis artifact")
	}
	t.Meta.Version = version
	s.logger.Info("analysis artifact saved",
		logging.AnalysisKey(t.Meta.Key),
		logging.String("version", version))

	if s.repo != nil {
		if err := s.repo.Save(ctx, &t.Meta); err != nil {
			s.logger.Warn("failed to index analysis metadata", logging.AnalysisKey(t.Meta.Key), logging.Err(err))
		}
	}
	s.setLatest(t.Meta.Key)

	sum := analysis.Summarize(t)
	s.publish(ctx, t, sum)

	return &AnalysisResult{
		Status:      errors.StatusSuccess,
		Message:     fmt.Sprintf("Candidate analysis completed for %s vs %s in %s", req.Candidate, req.Opponent, req.Location),
		ArtifactKey: t.Meta.Key,
		Version:     version,
		Summary:     sum,
		NextSteps: []string{
			"Further targeted steps can be done to identify whom to target for what for these 2 segments only: Rally Base, Hidden Goldmine",
		},
	}, nil
}

func (s *service) publish(ctx context.Context, t *analysis.Table, sum analysis.Summary) {
	e := event.NewAnalysisCompleted(t.Meta.Key, s.now())
	e.AnalysisID = t.Meta.ID
	e.Version = t.Meta.Version
	e.Candidate = t.Meta.Candidate
	e.Opponent = t.Meta.Opponent
	e.Location = t.Meta.Location
	e.Rows = t.Len()
	e.Quadrants = make(map[string]int, len(sum.Quadrants))
	for _, q := range sum.Quadrants {
		e.Quadrants[string(q.Strategy)] = q.Count
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish analysis event", logging.AnalysisKey(t.Meta.Key), logging.Err(err))
	}
}

func (s *service) setLatest(key string) {
	s.mu.Lock()
	s.latest = key
	s.mu.Unlock()
}

// resolveKey returns key, or the most recent analysis key when key is empty.
func (s *service) resolveKey(ctx context.Context, key string) (string, error) {
	if key != "" {
		return key, nil
	}
	s.mu.RLock()
	key = s.latest
	s.mu.RUnlock()
	if key == "" && s.repo != nil {
		meta, err := s.repo.Latest(ctx)
		if err != nil && !errors.IsCode(err, errors.ErrCodeAnalysisNotFound) {
			return "", err
		}
		if meta != nil {
			key = meta.Key
		}
	}
	if key == "" {
		return "", errors.New(errors.ErrCodeAnalysisNotFound, "No candidate analysis found. Please run an analysis first.")
	}
	return key, nil
}

func (s *service) Load(ctx context.Context, key string) (*analysis.Table, error) {
	key, err := s.resolveKey(ctx, key)
	if err != nil {
		return nil, err
	}
	data, err := s.artifacts.Load(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAnalysisNotFound,
			fmt.Sprintf("Could not load analysis data from '%s'", key))
	}
	t, err := analysis.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization,
			fmt.Sprintf("Could not decode analysis data from '%s'", key))
	}
	s.logger.Debug("loaded analysis",
		logging.AnalysisKey(key),
		logging.Int("rows", t.Len()),
		logging.Int("columns", len(t.Columns())))
	return t, nil
}

func (s *service) List(ctx context.Context, limit int) ([]*analysis.Metadata, error) {
	if s.repo == nil {
		key, err := s.resolveKey(ctx, "")
		if err != nil {
			return nil, nil
		}
		t, err := s.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		return []*analysis.Metadata{&t.Meta}, nil
	}
	return s.repo.List(ctx, limit)
}

func (s *service) view(name string) {
	s.metrics.IncCounter(metricViewTotal, map[string]string{"view": name})
}

func (s *service) Summary(ctx context.Context, key string) (*analysis.Summary, error) {
	t, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	s.view("summary")
	sum := analysis.Summarize(t)
	return &sum, nil
}

func (s *service) Structure(ctx context.Context, key string) (*analysis.DataStructure, error) {
	t, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	s.view("structure")
	ds := analysis.Structure(t)
	return &ds, nil
}

func (s *service) Rally(ctx context.Context, key string) (*RallyReport, error) {
	t, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	s.view("rally")
	rep := IdentifyRallySegments(t)
	s.logger.Info("rally segments identified",
		logging.AnalysisKey(t.Meta.Key),
		logging.Int("rally_locations", len(t.WithStrategy(signal.StrategyRallyTheBase))),
		logging.String("status", rep.Status))
	return rep, nil
}

func (s *service) Goldmine(ctx context.Context, key string) (*GoldmineReport, error) {
	t, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	s.view("goldmine")
	rep := IdentifyHiddenGoldmine(t)
	s.logger.Info("hidden goldmine identified",
		logging.AnalysisKey(t.Meta.Key),
		logging.Int("locations", rep.TotalLocations),
		logging.Float64("percentage", rep.PercentageToTarget))
	return rep, nil
}

//Personal.AI order the ending
