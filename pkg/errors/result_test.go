package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

func TestToResult_AppErrorKeepsSuggestions(t *testing.T) {
	t.Parallel()

	err := errors.New(errors.ErrCodeNoOverlap, "no overlap").
		WithSuggestions("Check candidate name spelling", "Try a broader geographic area")
	res := errors.ToResult(fmt.Errorf("analysis: %w", err))

	require.NotNil(t, res)
	assert.Equal(t, errors.StatusError, res.Status)
	assert.Equal(t, errors.ErrCodeNoOverlap, res.Code)
	assert.Len(t, res.Suggestions, 2)
	assert.False(t, res.OK())
}

func TestToResult_PlainErrorIsInternal(t *testing.T) {
	t.Parallel()

	res := errors.ToResult(stderrors.New("boom"))
	assert.Equal(t, errors.ErrCodeInternal, res.Code)
	assert.Equal(t, "boom", res.Message)
}

func TestToResult_Nil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.ToResult(nil))
}

func TestToResult_PassesResultThrough(t *testing.T) {
	t.Parallel()

	w := errors.Warning(errors.ErrCodeEmptyFilterResult, "nothing matched")
	res := errors.ToResult(w)
	assert.Same(t, w, res)
	assert.True(t, res.OK())
}

func TestRecover_ConvertsPanic(t *testing.T) {
	t.Parallel()

	run := func() (res *errors.Result) {
		defer errors.Recover(&res)
		panic("index out of range")
	}

	res := run()
	require.NotNil(t, res)
	assert.Equal(t, errors.StatusError, res.Status)
	assert.Contains(t, res.Message, "index out of range")
}

//Personal.AI order the ending
