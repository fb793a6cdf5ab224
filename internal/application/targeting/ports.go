// Package targeting narrows stored analyses to tagged location sets and keeps
// a short history of them.
package targeting

import (
	"context"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/location"
)

// TableLoader loads a stored analysis. An empty key addresses the latest one.
type TableLoader interface {
	Load(ctx context.Context, key string) (*analysis.Table, error)
}

// LocationStore persists identified location sets. Save makes the set the
// current one and appends it to the bounded history.
type LocationStore interface {
	Save(ctx context.Context, set *location.Identified) error
	// Get returns the set stored under tag, or the current set when tag is
	// empty. A missing set is ErrCodeLocationsNotFound.
	Get(ctx context.Context, tag string) (*location.Identified, error)
	History(ctx context.Context) ([]location.HistoryEntry, error)
}

// MetricsCollector records operational metrics.
type MetricsCollector interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

type noopMetrics struct{}

func (noopMetrics) IncCounter(string, map[string]string)                {}
func (noopMetrics) ObserveHistogram(string, float64, map[string]string) {}

const (
	metricFilterTotal     = "location_filter_total"
	metricFilterLocations = "location_filter_locations"
)

//Personal.AI order the ending
