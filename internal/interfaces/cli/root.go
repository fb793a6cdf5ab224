// Package cli implements the resonance command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// Set through -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var outputFormats = []string{"text", "json", "table"}

// ContainerFactory wires the services a command runs against.
type ContainerFactory func(cfg *config.Config, logger logging.Logger) (*app.Container, error)

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
	output     string
	verbose    bool
	noColor    bool
	timeout    time.Duration
}

func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "config file path (default: ./resonance.yaml)")
	pf.StringVar(&f.envFile, "env-file", "", "dotenv file loaded before the config (default: .env)")
	pf.StringVar(&f.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&f.output, "output", "o", "text", "output format ("+strings.Join(outputFormats, ", ")+")")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log at debug level")
	pf.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	pf.DurationVar(&f.timeout, "timeout", 5*time.Minute, "upper bound for one command")
}

type sessionKey struct{}

// Session is what every command runs with: the loaded configuration, a
// console logger and the output format. Services are only connected when a
// command first asks for them.
type Session struct {
	Config  *config.Config
	Logger  logging.Logger
	Output  string
	Timeout time.Duration

	factory   ContainerFactory
	container *app.Container
}

// Container returns the wired services, connecting on first use.
func (s *Session) Container() (*app.Container, error) {
	if s.container == nil {
		c, err := s.factory(s.Config, s.Logger)
		if err != nil {
			return nil, err
		}
		s.container = c
	}
	return s.container, nil
}

// Close releases the container if one was built.
func (s *Session) Close() error {
	c := s.container
	s.container = nil
	if c == nil {
		return nil
	}
	return c.Close()
}

// SessionFrom returns the session stored on cmd by the root command.
func SessionFrom(cmd *cobra.Command) (*Session, error) {
	if ctx := cmd.Context(); ctx != nil {
		if s, ok := ctx.Value(sessionKey{}).(*Session); ok && s != nil {
			return s, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInternal, "command has no session")
}

// Option customizes the root command.
type Option func(*rootConfig)

type rootConfig struct {
	factory ContainerFactory
}

// WithContainerFactory replaces app.New.
func WithContainerFactory(f ContainerFactory) Option {
	return func(rc *rootConfig) { rc.factory = f }
}

// NewRootCommand creates the root command with its global flags and every
// subcommand.
func NewRootCommand(options ...Option) *cobra.Command {
	rc := &rootConfig{factory: app.New}
	for _, o := range options {
		o(rc)
	}
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "resonance",
		Short: "Resonance-Intelligence CLI: cultural-affinity heatmaps for campaign targeting",
		Long: "Resonance-Intelligence turns location-level cultural affinity signals into\n" +
			"composite candidate analyses, strategy quadrants and targeted location sets.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.session(rc.factory)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, sessionKey{}, s))
			return nil
		},
	}
	flags.register(cmd)

	cmd.AddCommand(
		NewHeatmapCmd(),
		NewAnalyzeCmd(),
		NewFilterCmd(),
		NewReportCmd(),
		NewLocationsCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// session validates the flags, loads the environment and configuration and
// builds the console logger.
func (f *globalFlags) session(factory ContainerFactory) (*Session, error) {
	output := strings.ToLower(f.output)
	if !slices.Contains(outputFormats, output) {
		return nil, errors.Newf(errors.ErrCodeValidation, "unknown output format %q", f.output).
			WithSuggestions("use one of: " + strings.Join(outputFormats, ", "))
	}

	var envFiles []string
	if f.envFile != "" {
		envFiles = append(envFiles, f.envFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	level := strings.ToLower(f.logLevel)
	if f.verbose {
		level = logging.LevelDebug
	}
	// Logs go to stderr so stdout stays parseable.
	logger, err := logging.NewLogger(logging.LogConfig{Level: level, Format: logging.FormatConsole, Output: "stderr"})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	if f.noColor {
		color.NoColor = true
	}
	return &Session{Config: cfg, Logger: logger, Output: output, Timeout: f.timeout, factory: factory}, nil
}

// loadConfig reads --config, else the first existing default location, else
// the environment alone.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	if f.configPath != "" {
		return config.Load(f.configPath)
	}
	for _, p := range defaultConfigPaths() {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

func defaultConfigPaths() []string {
	paths := []string{"./resonance.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".resonance", "config.yaml"))
	}
	return append(paths, "/etc/resonance/config.yaml")
}

// withContainer runs fn against the session's services under the global
// timeout and releases them afterwards.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	s, err := SessionFrom(cmd)
	if err != nil {
		return err
	}
	c, err := s.Container()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			s.Logger.Warn("failed to release connections", logging.Err(cerr))
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if s.Timeout > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, s.Timeout)
		defer stop()
	}
	return fn(ctx, c)
}

// Execute runs the CLI and prints any error. A panic is reported as an
// internal error.
func Execute(options ...Option) (err error) {
	root := NewRootCommand(options...)
	var crash *errors.Result
	defer func() {
		if crash != nil {
			err = errors.New(crash.Code, crash.Message)
			PrintError(root, err)
		}
	}()
	defer errors.Recover(&crash)

	if err = root.Execute(); err != nil {
		PrintError(root, err)
	}
	return err
}

//Personal.AI order the ending
