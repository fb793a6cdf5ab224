package heatmap

import (
	"context"
	"strings"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// DefaultGridLimit is used when a query does not set a limit.
const DefaultGridLimit = 50

// GridQuery describes one grid retrieval.
type GridQuery struct {
	// Name labels the grid, e.g. "candidate" or "tag:economy".
	Name           string
	Location       string
	EntityIDs      []string
	TagIDs         []string
	AudienceIDs    []string
	AudienceWeight *float64
	Demographics   signal.Demographics
	Limit          int
	Boundary       string
	BiasTrends     string
}

// Validate rejects queries that must not reach the provider.
func (q GridQuery) Validate() error {
	if strings.TrimSpace(q.Location) == "" {
		return errors.New(errors.ErrCodeInvalidLocation, "location query is required")
	}
	return q.Demographics.Validate()
}

// GridFetcher retrieves one grid.
type GridFetcher interface {
	Fetch(ctx context.Context, q GridQuery) (*signal.Grid, error)
}

// Fetcher calls the provider grid endpoint exactly once per query and
// normalizes the answer.
type Fetcher struct {
	provider     signal.Provider
	logger       logging.Logger
	metrics      MetricsCollector
	clock        Clock
	defaultLimit int
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithDefaultLimit overrides DefaultGridLimit.
func WithDefaultLimit(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.defaultLimit = n
		}
	}
}

// WithFetcherClock sets the clock used for timing.
func WithFetcherClock(c Clock) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.clock = c
		}
	}
}

// NewFetcher builds a fetcher.
func NewFetcher(provider signal.Provider, logger logging.Logger, metrics MetricsCollector, opts ...FetcherOption) *Fetcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	f := &Fetcher{
		provider:     provider,
		logger:       logger.Named("fetcher"),
		metrics:      metrics,
		clock:        RealClock(),
		defaultLimit: DefaultGridLimit,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Request maps a query to the provider request. The signal bundle is only
// attached when demographics or audiences are present.
func (f *Fetcher) Request(q GridQuery) signal.GridRequest {
	limit := q.Limit
	if limit <= 0 {
		limit = f.defaultLimit
	}
	return signal.GridRequest{
		Location:       q.Location,
		EntityIDs:      q.EntityIDs,
		TagIDs:         q.TagIDs,
		AudienceIDs:    q.AudienceIDs,
		AudienceWeight: q.AudienceWeight,
		Demographics:   q.Demographics,
		WithSignals:    !q.Demographics.IsZero() || len(q.AudienceIDs) > 0,
		Boundary:       q.Boundary,
		BiasTrends:     q.BiasTrends,
		Limit:          limit,
	}
}

// Fetch returns a normalized grid. Invalid queries fail before any network
// call. A provider failure yields an empty grid together with a
// ErrCodeProviderError error so callers may retry; zero points yield an
// empty grid and no error.
func (f *Fetcher) Fetch(ctx context.Context, q GridQuery) (*signal.Grid, error) {
	if err := q.Validate(); err != nil {
		return signal.EmptyGrid(q.Name, q.Location, err.Error()), err
	}

	start := f.clock.Now()
	res, err := f.provider.GetGrid(ctx, f.Request(q))
	f.metrics.ObserveHistogram(metricFetchDuration, f.clock.Now().Sub(start).Seconds(), map[string]string{"grid": gridLabel(q.Name)})

	if err != nil {
		f.outcome(q, "error")
		f.logger.Error("grid fetch failed",
			logging.Grid(q.Name), logging.Location(q.Location), logging.Err(err))
		code := errors.GetCode(err)
		if code == errors.CodeUnknown {
			code = errors.ErrCodeProviderError
		}
		return signal.EmptyGrid(q.Name, q.Location, err.Error()), errors.Wrap(err, code, "grid fetch failed").WithDetail(err.Error())
	}
	if res == nil || !res.Success {
		reason := "Unknown error"
		if res != nil && res.Error != "" {
			reason = res.Error
		}
		f.outcome(q, "failed")
		f.logger.Error("grid fetch rejected",
			logging.Grid(q.Name), logging.Location(q.Location), logging.String("reason", reason))
		return signal.EmptyGrid(q.Name, q.Location, reason),
			errors.New(errors.ErrCodeProviderError, "Heatmap data retrieval failed: "+reason)
	}

	g := signal.NewGrid(q.Name, q.Location, res.Points)
	f.metrics.ObserveHistogram(metricFetchPoints, float64(g.Len()), map[string]string{"grid": gridLabel(q.Name)})
	if g.IsEmpty() {
		g.Error = "no heatmap data points"
		f.outcome(q, "empty")
		f.logger.Warn("grid is empty",
			logging.Grid(q.Name), logging.Location(q.Location), logging.Int("dropped", g.Dropped))
		return g, nil
	}
	f.outcome(q, "success")
	f.logger.Info("grid fetched",
		logging.Grid(q.Name),
		logging.Location(q.Location),
		logging.Int("points", g.Len()),
		logging.Int("dropped", g.Dropped))
	return g, nil
}

func (f *Fetcher) outcome(q GridQuery, outcome string) {
	f.metrics.IncCounter(metricFetchTotal, map[string]string{"grid": gridLabel(q.Name), "outcome": outcome})
}

// gridLabel keeps metric cardinality bounded: "tag:economy" becomes "tag".
func gridLabel(name string) string {
	if i := strings.IndexByte(name, ':'); i > 0 {
		return name[:i]
	}
	if name == "" {
		return "adhoc"
	}
	return name
}

//Personal.AI order the ending
