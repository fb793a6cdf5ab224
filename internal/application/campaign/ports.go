// Package campaign builds composite candidate analyses and derives the
// targeting views campaign managers work from.
package campaign

import (
	"context"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
)

// ArtifactStore persists opaque, versioned analysis blobs.
type ArtifactStore interface {
	// Save writes data under key and returns the stored version.
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Load returns the latest version stored under key.
	Load(ctx context.Context, key string) ([]byte, error)
}

// AnalysisRepository indexes analysis metadata.
type AnalysisRepository interface {
	Save(ctx context.Context, meta *analysis.Metadata) error
	FindByKey(ctx context.Context, key string) (*analysis.Metadata, error)
	Latest(ctx context.Context) (*analysis.Metadata, error)
	List(ctx context.Context, limit int) ([]*analysis.Metadata, error)
}

// MetricsCollector records operational metrics.
type MetricsCollector interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

type noopMetrics struct{}

func (noopMetrics) IncCounter(string, map[string]string)                {}
func (noopMetrics) ObserveHistogram(string, float64, map[string]string) {}

// Metric names.
const (
	metricAnalysisTotal    = "analysis_build_total"
	metricAnalysisDuration = "analysis_build_duration_seconds"
	metricAnalysisRows     = "analysis_rows"
	metricViewTotal        = "analysis_view_total"
)

//Personal.AI order the ending
