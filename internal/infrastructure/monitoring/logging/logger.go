// Package logging is the structured logger shared by every component. Callers
// depend on Logger; zap is only imported here.
package logging

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Accepted level names.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Accepted formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Field is a typed key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, val string) Field               { return Field{Key: key, Value: val} }
func Strings(key string, val []string) Field     { return Field{Key: key, Value: val} }
func Int(key string, val int) Field              { return Field{Key: key, Value: val} }
func Int64(key string, val int64) Field          { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field            { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field      { return Field{Key: key, Value: val} }
func Duration(key string, d time.Duration) Field { return Field{Key: key, Value: d} }

// Float64 records NaN and infinities as strings.
func Float64(key string, val float64) Field {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return Field{Key: key, Value: fmt.Sprint(val)}
	}
	return Field{Key: key, Value: val}
}

// Err records err under "error".
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain fields.

func AnalysisKey(key string) Field { return Field{Key: "analysis_key", Value: key} }
func Location(query string) Field  { return Field{Key: "location", Value: query} }
func Tag(tag string) Field         { return Field{Key: "tag", Value: tag} }
func Grid(name string) Field       { return Field{Key: "grid", Value: name} }

// Logger is the structured logging contract.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Fatal logs and then calls os.Exit(1). Startup only.
	Fatal(msg string, fields ...Field)

	With(fields ...Field) Logger
	// Named appends name to the logger name, separated by a period.
	Named(name string) Logger

	Sync() error
}

// LogConfig describes a logger. Zero values select info, JSON and stdout.
type LogConfig struct {
	Level  string
	Format string
	// Output is "stdout", "stderr" or a file path.
	Output string
	// ErrorOutput receives zap's internal errors. Defaults to stderr.
	ErrorOutput string
	// Fields are attached to every entry, e.g. the service name.
	Fields []Field
}

// ParseLevel converts a level name. Unknown names are an error.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LevelDebug:
		return zapcore.DebugLevel, nil
	case LevelInfo, "":
		return zapcore.InfoLevel, nil
	case LevelWarn, "warning":
		return zapcore.WarnLevel, nil
	case LevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q", s)
	}
}

// NewLogger builds a zap-backed Logger.
func NewLogger(cfg LogConfig) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
	if cfg.ErrorOutput == "" {
		cfg.ErrorOutput = "stderr"
	}

	var encCfg zapcore.EncoderConfig
	switch cfg.Format {
	case FormatConsole:
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	case FormatJSON, "":
		cfg.Format = FormatJSON
		encCfg = zap.NewProductionEncoderConfig()
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == FormatConsole,
		Encoding:         cfg.Format,
		EncoderConfig:    encCfg,
		OutputPaths:      []string{cfg.Output},
		ErrorOutputPaths: []string{cfg.ErrorOutput},
	}
	z, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	l := &zapLogger{z: z}
	if len(cfg.Fields) > 0 {
		return l.With(cfg.Fields...), nil
	}
	return l, nil
}

// NewLoggerFromCore wraps an existing core, e.g. a zaptest observer.
func NewLoggerFromCore(core zapcore.Core, opts ...zap.Option) Logger {
	return &zapLogger{z: zap.New(core, append([]zap.Option{zap.AddCallerSkip(1)}, opts...)...)}
}

type zapLogger struct {
	z *zap.Logger
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case []string:
			out = append(out, zap.Strings(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case int64:
			out = append(out, zap.Int64(f.Key, v))
		case float64:
			out = append(out, zap.Float64(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, toZapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, toZapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, toZapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, toZapFields(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, toZapFields(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(toZapFields(fields)...)}
}

func (l *zapLogger) Named(name string) Logger { return &zapLogger{z: l.z.Named(name)} }

func (l *zapLogger) Sync() error { return l.z.Sync() }

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) Fatal(string, ...Field) {}
func (n nopLogger) With(...Field) Logger { return n }
func (n nopLogger) Named(string) Logger  { return n }
func (nopLogger) Sync() error            { return nil }

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger { return nopLogger{} }

//Personal.AI order the ending
