// Package heatmap orchestrates signal resolution and grid retrieval against
// the cultural-intelligence provider and derives the location rankings built
// on a single grid.
package heatmap

import (
	"context"
	"time"
)

// MetricsCollector records operational metrics.
type MetricsCollector interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

type noopMetrics struct{}

func (noopMetrics) IncCounter(string, map[string]string)                {}
func (noopMetrics) ObserveHistogram(string, float64, map[string]string) {}

// Clock abstracts waiting so retry backoff is testable.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock returns a Clock backed by the runtime timer.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Metric names.
const (
	metricResolveTotal  = "signal_resolve_total"
	metricFetchTotal    = "grid_fetch_total"
	metricFetchDuration = "grid_fetch_duration_seconds"
	metricFetchPoints   = "grid_fetch_points"
	metricRetryTotal    = "grid_fetch_retries_total"
	metricDegradedTotal = "grid_fetch_degraded_total"
)

//Personal.AI order the ending
