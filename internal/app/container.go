package app

import (
	"fmt"

	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// Container is the fully wired process. Registry and Metrics are nil when
// metrics are disabled.
type Container struct {
	Config   *config.Config
	Logger   logging.Logger
	Registry prometheus.Registrar
	Metrics  *prometheus.AppMetrics
	Infra    *Infrastructure
	*Services
}

// NewLogger builds the zap logger described by the log section.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: cfg.Output,
		Fields: []logging.Field{logging.String("service", "resonance")},
	})
}

// NewMetrics builds the registrar and the application metrics. Both are nil
// when metrics are disabled.
func NewMetrics(cfg config.MetricsConfig, logger logging.Logger) (prometheus.Registrar, *prometheus.AppMetrics, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	reg, err := prometheus.NewCollector(prometheus.ConfigFromMetrics(cfg), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics: %w", err)
	}
	return reg, prometheus.NewAppMetrics(reg, logger), nil
}

// Recorder returns the metrics as a MetricsCollector, or nil when disabled.
func (c *Container) Recorder() MetricsCollector {
	if c.Metrics == nil {
		return nil
	}
	return c.Metrics
}

// New connects every dependency named by cfg and builds the services. logger
// may be nil, in which case one is built from cfg.Log.
func New(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if logger == nil {
		l, err := NewLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		logger = l
	}
	c := &Container{Config: cfg, Logger: logger}

	reg, metrics, err := NewMetrics(cfg.Metrics, logger)
	if err != nil {
		return nil, err
	}
	c.Registry, c.Metrics = reg, metrics

	infra, err := NewInfrastructure(cfg, logger, c.Recorder())
	if err != nil {
		return nil, err
	}
	c.Infra = infra

	services, err := NewServices(cfg.Analysis, infra, logger, c.Recorder())
	if err != nil {
		infra.Close()
		return nil, err
	}
	c.Services = services
	return c, nil
}

// Close releases the infrastructure and flushes the logger.
func (c *Container) Close() error {
	var err error
	if c.Infra != nil {
		err = c.Infra.Close()
	}
	_ = c.Logger.Sync()
	return err
}

//Personal.AI order the ending
