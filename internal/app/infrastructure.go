// Package app assembles the process-wide object graph shared by the API
// server, the worker and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/turtacn/Resonance-Intelligence/internal/application/campaign"
	"github.com/turtacn/Resonance-Intelligence/internal/application/targeting"
	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/event"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/database/postgres/repositories"
	redisclient "github.com/turtacn/Resonance-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/provider/qloo"
	minioclient "github.com/turtacn/Resonance-Intelligence/internal/infrastructure/storage/minio"
)

// HealthCheck is a named dependency probe.
type HealthCheck struct {
	Component string
	Check     func(ctx context.Context) error
}

// Infrastructure holds the external dependencies the services run on. The
// repository and the publisher are optional.
type Infrastructure struct {
	Provider   signal.Provider
	Artifacts  campaign.ArtifactStore
	Locations  targeting.LocationStore
	Repository campaign.AnalysisRepository
	Publisher  event.Publisher
	Checks     []HealthCheck

	closers []func() error
}

// Close releases every connection in reverse order of creation.
func (i *Infrastructure) Close() error {
	var first error
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](); err != nil && first == nil {
			first = err
		}
	}
	i.closers = nil
	return first
}

func (i *Infrastructure) onClose(fn func() error) { i.closers = append(i.closers, fn) }

// NewInfrastructure connects to the provider, Redis and MinIO, and to
// PostgreSQL and Kafka when they are enabled. On failure everything opened so
// far is closed again.
func NewInfrastructure(cfg *config.Config, logger logging.Logger, metrics qloo.MetricsCollector) (*Infrastructure, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	infra := &Infrastructure{}
	if err := infra.init(cfg, logger, metrics); err != nil {
		infra.Close()
		return nil, err
	}
	logger.Info("infrastructure initialized",
		logging.Bool("postgres", infra.Repository != nil),
		logging.Bool("kafka", infra.Publisher != nil))
	return infra, nil
}

func (i *Infrastructure) init(cfg *config.Config, logger logging.Logger, metrics qloo.MetricsCollector) error {
	api, err := qloo.NewClient(cfg.Provider.BaseURL, cfg.Provider.APIKey,
		qloo.WithTimeout(cfg.Provider.Timeout),
		qloo.WithRateLimit(cfg.Provider.RateLimit, cfg.Provider.RateBurst),
		qloo.WithUserAgent(cfg.Provider.UserAgent),
		qloo.WithLogger(logger),
		qloo.WithMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}

	rdb, err := redisclient.NewClient(cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	i.onClose(rdb.Close)
	i.Checks = append(i.Checks, HealthCheck{Component: "redis", Check: rdb.Ping})

	cache := redisclient.NewCache(rdb, logger, redisclient.WithPrefix(cfg.Redis.KeyPrefix))
	i.Provider = redisclient.NewCachedProvider(api, cache, redisclient.DefaultSearchTTL)
	i.Locations = redisclient.NewLocationStore(rdb, logger,
		redisclient.WithKeyPrefix(cfg.Redis.KeyPrefix),
		redisclient.WithHistorySize(cfg.Analysis.HistorySize),
		redisclient.WithLocationTTL(cfg.Redis.LocationTTL),
	)

	mc, err := minioclient.NewClient(cfg.MinIO, logger)
	if err != nil {
		return fmt.Errorf("minio: %w", err)
	}
	i.onClose(mc.Close)
	i.Checks = append(i.Checks, HealthCheck{Component: "minio", Check: mc.HealthCheck})
	i.Artifacts = minioclient.NewArtifactStore(mc, logger)

	if cfg.Database.Enabled {
		conn, err := postgres.NewConnection(cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		i.onClose(conn.Close)
		i.Checks = append(i.Checks, HealthCheck{Component: "postgres", Check: conn.HealthCheck})
		if cfg.Database.AutoMigrate {
			if err := postgres.NewMigrator(conn.DB(), logger).Up(); err != nil {
				return fmt.Errorf("postgres migrate: %w", err)
			}
		}
		i.Repository = repositories.NewAnalysisRepository(conn, logger)
	}

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		i.onClose(producer.Close)
		i.Publisher = producer
	}
	return nil
}

//Personal.AI order the ending
