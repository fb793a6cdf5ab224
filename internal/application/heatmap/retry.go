package heatmap

import (
	"context"
	"time"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// Retry defaults: two attempts with a fixed two-second pause. Two attempts is
// also the most a policy will make.
const (
	DefaultMaxAttempts = 2
	DefaultBackoff     = 2 * time.Second
)

// RetryPolicy is a bounded, fixed-backoff retry around a grid fetch.
// Exhausted retries degrade to an empty grid instead of an error.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Clock       Clock
	Logger      logging.Logger
	Metrics     MetricsCollector
}

// DefaultRetryPolicy returns the two-attempt, two-second policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Backoff: DefaultBackoff}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 || p.MaxAttempts > DefaultMaxAttempts {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	if p.Clock == nil {
		p.Clock = RealClock()
	}
	if p.Logger == nil {
		p.Logger = logging.NewNopLogger()
	}
	if p.Metrics == nil {
		p.Metrics = noopMetrics{}
	}
	return p
}

// FetchWithRetry runs the fetch up to MaxAttempts times, sleeping Backoff
// between attempts. Validation errors are returned immediately since
// repeating them cannot help; every other failure ends in an empty grid
// whose Error field carries the last cause.
func (p RetryPolicy) FetchWithRetry(ctx context.Context, f GridFetcher, q GridQuery) (*signal.Grid, error) {
	p = p.normalized()

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		g, err := f.Fetch(ctx, q)
		if err == nil {
			return g, nil
		}
		if errors.IsValidation(err) {
			return signal.EmptyGrid(q.Name, q.Location, err.Error()), err
		}
		lastErr = err
		if attempt == p.MaxAttempts {
			break
		}
		p.Metrics.IncCounter(metricRetryTotal, map[string]string{"grid": gridLabel(q.Name)})
		p.Logger.Warn("grid fetch attempt failed, retrying",
			logging.Grid(q.Name),
			logging.Int("attempt", attempt),
			logging.Duration("backoff", p.Backoff),
			logging.Err(err))
		if serr := p.Clock.Sleep(ctx, p.Backoff); serr != nil {
			lastErr = serr
			break
		}
	}

	p.Metrics.IncCounter(metricDegradedTotal, map[string]string{"grid": gridLabel(q.Name)})
	p.Logger.Error("grid fetch failed after retries, continuing with empty grid",
		logging.Grid(q.Name),
		logging.Location(q.Location),
		logging.Err(lastErr))
	return signal.EmptyGrid(q.Name, q.Location, lastErr.Error()), nil
}

//Personal.AI order the ending
