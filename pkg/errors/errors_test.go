package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"no overlap", errors.ErrCodeNoOverlap, "no overlapping locations"},
		{"invalid demographic", errors.ErrCodeInvalidDemographic, "age 99 is not supported"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeResolutionFailure, "could not resolve %q", "Jane Doe")
	assert.Equal(t, `could not resolve "Jane Doe"`, ae.Message)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("dial tcp: connection refused")
	wrapped := errors.Wrap(root, errors.ErrCodeProviderError, "grid request failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeProviderError, wrapped.Code)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeNoOverlap, "no overlap").WithSuggestions("Try a broader geographic area")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adding context")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeNoOverlap, outer.Code)
	assert.Equal(t, []string{"Try a broader geographic area"}, outer.Suggestions)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeNoOverlap, "no overlap")
	outer := errors.Wrap(inner, errors.CodeInternal, "unexpected state")

	assert.Equal(t, errors.CodeInternal, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestError_Method
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithoutDetail(t *testing.T) {
	t.Parallel()

	s := errors.New(errors.ErrCodeNoOverlap, "no overlap").Error()
	assert.Equal(t, "[ANA_001] no overlap", s)
}

func TestError_FormatWithDetail(t *testing.T) {
	t.Parallel()

	s := errors.New(errors.ErrCodeInvalidDemographic, "unsupported age").WithDetail("age=99").Error()
	assert.True(t, strings.HasPrefix(s, "[SIG_002]"))
	assert.Contains(t, s, "age=99")
}

func TestWithDetail_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	original := errors.New(errors.CodeNotFound, "resource missing")
	detailed := original.WithDetail("id=42")

	assert.Empty(t, original.Detail)
	assert.Equal(t, "id=42", detailed.Detail)
}

func TestIsCode_FindsInnerCodeBehindOuterAppError(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeProviderTimeout, "grid timed out")
	outer := errors.Wrap(inner, errors.ErrCodeAnalysisFailed, "analysis failed")

	assert.True(t, errors.IsCode(outer, errors.ErrCodeProviderTimeout))
	assert.True(t, errors.IsCode(outer, errors.ErrCodeAnalysisFailed))
	assert.Equal(t, errors.ErrCodeAnalysisFailed, errors.GetCode(outer))
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
	assert.Nil(t, ae.WithSuggestions("x"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesFmtWrapping(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeEmptyFilterResult, "empty")
	err := fmt.Errorf("filter: %w", inner)

	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyFilterResult))
	assert.False(t, errors.IsCode(err, errors.ErrCodeNoOverlap))
}

func TestIsValidation(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeInvalidDemographic, "x")))
	assert.True(t, errors.IsValidation(fmt.Errorf("filter: %w", errors.New(errors.CodeInvalidParam, "x"))))
	assert.False(t, errors.IsValidation(errors.New(errors.ErrCodeProviderError, "x")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeNoOverlap, errors.GetCode(errors.New(errors.ErrCodeNoOverlap, "x")))
}

//Personal.AI order the ending
