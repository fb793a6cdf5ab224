// API server entry point for Resonance-Intelligence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/Resonance-Intelligence/internal/interfaces/http"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the config")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *envFile, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string, port int) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	c, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer c.Close()
	logger := c.Logger

	logger.Info("starting Resonance-Intelligence API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
		logging.String("mode", cfg.Server.Mode),
		logging.Bool("database", cfg.Database.Enabled),
		logging.Bool("kafka", cfg.Kafka.Enabled))

	if configPath != "" {
		// Connections are built once; a changed file only takes effect on
		// restart.
		config.Watch(configPath,
			func(*config.Config) {
				logger.Warn("configuration file changed; restart to apply", logging.String("path", configPath))
			},
			func(err error) {
				logger.Error("changed configuration is invalid", logging.Err(err))
			})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpserver.NewServer(cfg.Server, httpserver.NewAPIHandler(c, version), logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("HTTP server error", logging.Err(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

//Personal.AI order the ending
