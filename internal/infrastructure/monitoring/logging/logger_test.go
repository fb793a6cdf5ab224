package logging

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func lastEntry(t *testing.T, buf *zaptest.Buffer) map[string]interface{} {
	t.Helper()
	lines := buf.Lines()
	require.NotEmpty(t, lines)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	return m
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"", FormatJSON, FormatConsole} {
		l, err := NewLogger(LogConfig{Level: LevelInfo, Format: format, Output: "stderr"})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_Rejects(t *testing.T) {
	_, err := NewLogger(LogConfig{Format: "xml"})
	assert.Error(t, err)

	_, err = NewLogger(LogConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestNewLogger_FileOutputWithFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resonance.log")
	l, err := NewLogger(LogConfig{Output: path, Fields: []Field{String("service", "resonance")}})
	require.NoError(t, err)

	l.Info("analysis stored", AnalysisKey("candidate_analysis_jane_ohio"))
	require.NoError(t, l.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "resonance", m["service"])
	assert.Equal(t, "candidate_analysis_jane_ohio", m["analysis_key"])
	assert.Equal(t, "info", m["level"])
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"DEBUG":   zapcore.DebugLevel,
		"":        zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("bogus")
	assert.Error(t, err)
}

func TestZapLogger_FieldsAreEncoded(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Info("grid fetched",
		String("location", "Austin, TX"),
		Int("points", 42),
		Float64("coverage", 12.5),
		Bool("empty", false),
		Strings("tags", []string{"economy", "education"}),
		Duration("elapsed", 2*time.Second),
		Float64("affinity", math.NaN()),
		Grid("candidate"),
		Tag("strong"),
	)

	m := lastEntry(t, buf)
	assert.Equal(t, "grid fetched", m["msg"])
	assert.Equal(t, "Austin, TX", m["location"])
	assert.EqualValues(t, 42, m["points"])
	assert.EqualValues(t, 12.5, m["coverage"])
	assert.Equal(t, false, m["empty"])
	assert.Len(t, m["tags"], 2)
	assert.Equal(t, "NaN", m["affinity"])
	assert.Equal(t, "candidate", m["grid"])
	assert.Equal(t, "strong", m["tag"])
}

func TestZapLogger_ErrField(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Error("provider failed", Err(errors.New("timeout")))
	assert.Equal(t, "timeout", lastEntry(t, buf)["error"])

	l.Warn("nil error", Err(nil))
	assert.Equal(t, "<nil>", lastEntry(t, buf)["error"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, buf := newTestLogger(t)

	child := l.Named("campaign").With(String("candidate", "Jane Doe"))
	child.Debug("building")

	m := lastEntry(t, buf)
	assert.Equal(t, "campaign", m["logger"])
	assert.Equal(t, "Jane Doe", m["candidate"])
	assert.True(t, strings.Contains(buf.String(), "building"))
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg")
		l.Warn("msg")
		l.Error("msg")
		l.With(String("k", "v")).Named("x").Info("msg")
		_ = l.Sync()
	})
}

//Personal.AI order the ending
