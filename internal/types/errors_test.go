package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCRErrorFormatting(t *testing.T) {
	err := NewError(ErrSessionNotFound, "session %q not found", "s1")
	assert.Equal(t, `SESSION_NOT_FOUND: session "s1" not found`, err.Error())

	withDetails := NewErrorWithDetails(ErrJSONParsingFailed, "raw text", "cannot parse")
	assert.Equal(t, "JSON_PARSING_FAILED: cannot parse (raw text)", withDetails.Error())
}

func TestAsMCRErrorPassesThroughTypedErrors(t *testing.T) {
	typed := NewError(ErrReasonerError, "evaluation failed")
	wrapped := fmt.Errorf("while querying: %w", typed)

	got := AsMCRError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ErrReasonerError, got.Code)
	assert.Equal(t, "evaluation failed", got.Message)
}

func TestAsMCRErrorCollapsesUnknownErrors(t *testing.T) {
	got := AsMCRError(errors.New("something odd"))
	require.NotNil(t, got)
	assert.Equal(t, ErrStrategyExecution, got.Code)
	assert.Equal(t, "something odd", got.Details)

	assert.Nil(t, AsMCRError(nil))
}

func TestResultEnvelopes(t *testing.T) {
	ok := OK()
	assert.True(t, ok.Success)
	assert.Empty(t, ok.ErrorCode)

	failed := FailErr(NewErrorWithDetails(ErrPrologQuerySyntax, "near token X", "bad query"))
	assert.False(t, failed.Success)
	assert.Equal(t, ErrPrologQuerySyntax, failed.ErrorCode)
	assert.Equal(t, "bad query", failed.Message)
	assert.Equal(t, "near token X", failed.Details)
}

func TestCostAccumulator(t *testing.T) {
	acc := NewCostAccumulator()
	assert.True(t, acc.Total().IsZero())

	acc.Record(Cost{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15, Calls: 1})
	acc.Record(Cost{PromptTokens: 2, CompletionTokens: 1, TotalTokens: 3, Calls: 1})

	total := acc.Total()
	assert.Equal(t, Cost{PromptTokens: 12, CompletionTokens: 6, TotalTokens: 18, Calls: 2}, total)
	assert.False(t, total.IsZero())
}
