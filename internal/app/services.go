package app

import (
	"github.com/turtacn/Resonance-Intelligence/internal/application/campaign"
	"github.com/turtacn/Resonance-Intelligence/internal/application/heatmap"
	"github.com/turtacn/Resonance-Intelligence/internal/application/reporting"
	"github.com/turtacn/Resonance-Intelligence/internal/application/targeting"
	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

// MetricsCollector is the recorder every service reports into.
type MetricsCollector interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

// Services are the application services built on one Infrastructure.
type Services struct {
	Heatmap   heatmap.Service
	Campaign  campaign.Service
	Targeting targeting.Service
	Reports   *reporting.CampaignReportService
}

// ServicesOption tweaks service construction.
type ServicesOption func(*servicesOptions)

type servicesOptions struct {
	clock heatmap.Clock
}

// WithClock replaces the wall clock used for retries and timestamps.
func WithClock(c heatmap.Clock) ServicesOption {
	return func(o *servicesOptions) { o.clock = c }
}

// NewServices wires the application services. metrics may be nil.
func NewServices(cfg config.AnalysisConfig, infra *Infrastructure, logger logging.Logger, metrics MetricsCollector, opts ...ServicesOption) (*Services, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	o := servicesOptions{clock: heatmap.RealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	resolver := heatmap.NewResolver(infra.Provider, logger, metrics)
	fetcher := heatmap.NewFetcher(infra.Provider, logger, metrics,
		heatmap.WithDefaultLimit(cfg.GridLimit),
		heatmap.WithFetcherClock(o.clock),
	)

	builder := campaign.NewBuilder(resolver, fetcher, logger, metrics,
		campaign.WithRetryPolicy(heatmap.RetryPolicy{
			MaxAttempts: cfg.RetryAttempts,
			Backoff:     cfg.RetryBackoff,
			Clock:       o.clock,
			Logger:      logger.Named("retry"),
			Metrics:     metrics,
		}),
		campaign.WithParallelFetch(cfg.ParallelFetch),
		campaign.WithIssueBaseline(cfg.IssueBaseline),
		campaign.WithGridLimit(cfg.GridLimit),
		campaign.WithClock(o.clock),
	)

	campaignOpts := []campaign.ServiceOption{
		campaign.WithPublisher(infra.Publisher),
		campaign.WithMetrics(metrics),
	}
	if infra.Repository != nil {
		campaignOpts = append(campaignOpts, campaign.WithRepository(infra.Repository))
	}
	analyses := campaign.NewService(builder, infra.Artifacts, logger, campaignOpts...)

	targets := targeting.NewService(analyses, infra.Locations, logger,
		targeting.WithPublisher(infra.Publisher),
		targeting.WithMetrics(metrics),
		targeting.WithNow(o.clock.Now),
	)

	reports, err := reporting.NewCampaignReportService(analyses, infra.Artifacts, logger, o.clock.Now)
	if err != nil {
		return nil, err
	}

	return &Services{
		Heatmap:   heatmap.NewService(resolver, fetcher, logger),
		Campaign:  analyses,
		Targeting: targets,
		Reports:   reports,
	}, nil
}

//Personal.AI order the ending
