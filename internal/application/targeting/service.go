package targeting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/event"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/location"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

const sampleSize = 3

// FilterRequest selects locations from a stored analysis.
type FilterRequest struct {
	AnalysisKey string            `json:"analysis_key,omitempty"`
	Criteria    location.Criteria `json:"criteria"`
	Tag         string            `json:"tag"`
}

// FilterResponse is the filter outcome plus what was persisted.
type FilterResponse struct {
	location.Result
	AnalysisKey string       `json:"analysis_key"`
	Description string       `json:"description,omitempty"`
	Sample      [][2]float64 `json:"coordinates_sample,omitempty"`
	Saved       bool         `json:"saved"`
}

// HistoryResult lists recent sets and names the current one.
type HistoryResult struct {
	Status  string                  `json:"status"`
	Message string                  `json:"message"`
	History []location.HistoryEntry `json:"location_history"`
	Current string                  `json:"current_identified"`
}

// PolygonResult is the geometry of an identified set. With fewer than three
// points only the raw coordinates are returned.
type PolygonResult struct {
	Tag         string                     `json:"tag"`
	Coordinates [][2]float64               `json:"coordinates"`
	Footprint   *location.Footprint        `json:"footprint,omitempty"`
	GeoJSON     *geojson.FeatureCollection `json:"geojson"`
}

// Service filters analyses into tagged location sets.
type Service interface {
	Filter(ctx context.Context, req FilterRequest) (*FilterResponse, error)
	Identified(ctx context.Context, tag string) (*location.Identified, error)
	History(ctx context.Context) (*HistoryResult, error)
	Polygon(ctx context.Context, tag string) (*PolygonResult, error)
}

type service struct {
	tables    TableLoader
	store     LocationStore
	publisher event.Publisher
	logger    logging.Logger
	metrics   MetricsCollector
	now       func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithPublisher emits a locations-identified event for every saved set.
func WithPublisher(p event.Publisher) Option {
	return func(s *service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(s *service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithNow overrides the timestamp source.
func WithNow(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the targeting service.
func NewService(tables TableLoader, store LocationStore, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &service{
		tables:    tables,
		store:     store,
		publisher: event.NopPublisher{},
		logger:    logger.Named("targeting"),
		metrics:   noopMetrics{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Filter applies the criteria to the analysis and saves a non-empty result
// under the tag. An empty result is returned with warning status and is not
// saved.
func (s *service) Filter(ctx context.Context, req FilterRequest) (*FilterResponse, error) {
	if strings.TrimSpace(req.Tag) == "" {
		return nil, errors.New(errors.ErrCodeInvalidCriteria, "location tag is required")
	}
	t, err := s.tables.Load(ctx, req.AnalysisKey)
	if err != nil {
		return nil, err
	}
	s.logger.Info("filtering locations",
		logging.AnalysisKey(t.Meta.Key),
		logging.Int("rows", t.Len()),
		logging.Int("criteria", len(req.Criteria)))

	res := location.Apply(t, req.Criteria, req.Tag)
	for _, col := range res.Skipped {
		s.logger.Warn("filter column not found, skipping", logging.String("column", col))
	}
	for _, st := range res.Steps {
		s.logger.Debug("filter applied",
			logging.String("filter", st.Filter),
			logging.Int("before", st.Before),
			logging.Int("after", st.After))
	}

	out := &FilterResponse{Result: res, AnalysisKey: t.Meta.Key}
	if res.Empty() {
		s.metrics.IncCounter(metricFilterTotal, map[string]string{"outcome": "empty"})
		s.logger.Warn("filter matched no locations", logging.Strings("filters", res.AppliedFilters))
		return out, nil
	}

	set := location.NewIdentified(res, t.Meta.Key, s.now())
	if err := s.store.Save(ctx, set); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to save identified locations")
	}
	out.Saved = true
	out.Description = set.Description
	out.Sample = res.Coordinates
	if len(out.Sample) > sampleSize {
		out.Sample = out.Sample[:sampleSize]
	}
	s.metrics.IncCounter(metricFilterTotal, map[string]string{"outcome": "saved"})
	s.metrics.ObserveHistogram(metricFilterLocations, float64(set.TotalLocations), nil)
	s.logger.Info("identified locations saved",
		logging.Tag(set.Tag),
		logging.Int("locations", set.TotalLocations))

	e := event.NewLocationsIdentified(set.Tag, s.now())
	e.AnalysisKey = set.AnalysisKey
	e.TotalLocations = set.TotalLocations
	e.Filters = set.FiltersApplied
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish locations event", logging.Tag(set.Tag), logging.Err(err))
	}
	return out, nil
}

func (s *service) Identified(ctx context.Context, tag string) (*location.Identified, error) {
	set, err := s.store.Get(ctx, tag)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeLocationsNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read identified locations")
	}
	s.logger.Info("retrieved identified locations",
		logging.Tag(set.Tag),
		logging.Int("locations", set.TotalLocations))
	return set, nil
}

func (s *service) History(ctx context.Context) (*HistoryResult, error) {
	h, err := s.store.History(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to list location history")
	}
	if len(h) == 0 {
		return &HistoryResult{Status: "info", Message: "No location history found", History: []location.HistoryEntry{}, Current: "None"}, nil
	}
	res := &HistoryResult{
		Status:  errors.StatusSuccess,
		Message: fmt.Sprintf("Found %d recent location groups", len(h)),
		History: h,
		Current: "None",
	}
	if cur, err := s.store.Get(ctx, ""); err == nil {
		res.Current = cur.Tag
	}
	return res, nil
}

func (s *service) Polygon(ctx context.Context, tag string) (*PolygonResult, error) {
	set, err := s.Identified(ctx, tag)
	if err != nil {
		return nil, err
	}
	res := &PolygonResult{
		Tag:         set.Tag,
		Coordinates: set.Coordinates,
		GeoJSON:     location.FeatureCollection(set),
	}
	fp, err := location.NewFootprint(set)
	switch {
	case err == nil:
		res.Footprint = fp
	case errors.IsCode(err, errors.ErrCodeInsufficientPoints):
		s.logger.Debug("too few points for a polygon", logging.Int("points", len(set.Coordinates)))
	default:
		return nil, err
	}
	return res, nil
}

//Personal.AI order the ending
