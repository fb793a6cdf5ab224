package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

func TestMockLogger_RecordsMessages(t *testing.T) {
	l := NewMockLogger()
	l.Info("hello", logging.String("k", "v"))
	l.Warn("careful")
	l.Warn("careful again")

	assert.True(t, l.HasMessage("info", "hello"))
	assert.False(t, l.HasMessage("error", "hello"))
	assert.Equal(t, 2, l.CountLevel("warn"))
	assert.Equal(t, 0, l.CountLevel("bogus"))

	msgs := l.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "v", msgs[0].Fields["k"])

	l.Clear()
	assert.Empty(t, l.GetMessages())
}

func TestMockLogger_ChildrenShareBuffer(t *testing.T) {
	l := NewMockLogger()
	l.Named("x").With(logging.Int("n", 1)).Error("boom")
	assert.True(t, l.HasMessage("error", "boom"))
	assert.EqualValues(t, 1, l.GetMessages()[0].Fields["n"])
}

func TestMockLogger_FatalDoesNotExit(t *testing.T) {
	l := NewMockLogger()
	l.Fatal("unrecoverable", logging.AnalysisKey("a-1"))
	assert.Equal(t, 1, l.CountLevel("fatal"))
}

//Personal.AI order the ending
