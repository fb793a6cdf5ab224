// Background worker for Resonance-Intelligence. It consumes analysis events
// from Kafka and renders the campaign report of every completed analysis.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/event"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/Resonance-Intelligence/internal/interfaces/http"
)

const (
	defaultHealthPort = 8081
	maxRetries        = 3
	retryBackoff      = time.Second
	maxRetryBackoff   = 30 * time.Second
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the config")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for /healthz, /readyz and /metrics")
	ensureTopics := flag.Bool("ensure-topics", false, "create the service topics before consuming")
	flag.Parse()

	if err := run(*configPath, *envFile, *healthPort, *ensureTopics); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string, healthPort int, ensureTopics bool) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka.enabled must be true for the worker")
	}

	c, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer c.Close()
	logger := c.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prefix := cfg.Kafka.TopicPrefix
	if ensureTopics {
		if err := provisionTopics(ctx, cfg.Kafka.Brokers, prefix, logger); err != nil {
			return err
		}
	}

	topic := kafka.TopicName(prefix, event.TopicAnalysisCompleted)
	consumer, err := kafka.NewConsumer(cfg.Kafka, []string{topic}, kafka.RetryPolicy{
		Retries:    maxRetries,
		Backoff:    retryBackoff,
		MaxBackoff: maxRetryBackoff,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("consumer close failed", logging.Err(err))
		}
	}()
	consumer.Subscribe(topic, app.NewReportHandler(c.Reports, logger, c.Metrics))

	if err := consumer.Start(ctx); err != nil {
		return err
	}
	logger.Info("Resonance-Intelligence worker started",
		logging.String("version", version),
		logging.String("topic", topic),
		logging.Int("health_port", healthPort))

	probeCfg := cfg.Server
	probeCfg.Port = healthPort
	probes := httpserver.NewServer(probeCfg, httpserver.NewProbeHandler(c, version), logger)
	if err := probes.Run(ctx); err != nil {
		logger.Error("probe server error", logging.Err(err))
		return err
	}

	st := consumer.Stats()
	logger.Info("worker stopped",
		logging.Int64("processed", st.Processed),
		logging.Int64("failed", st.Failed),
		logging.Int64("dead_lettered", st.DeadLettered))
	return nil
}

func provisionTopics(ctx context.Context, brokers []string, prefix string, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(brokers, logger)
	if err != nil {
		return err
	}
	defer tm.Close()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(prefix))
}

//Personal.AI order the ending
