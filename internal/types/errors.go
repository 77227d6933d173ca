// Package types defines the shared vocabulary of the reasoning service:
// error codes, the structured result envelope returned across the public
// boundary, and the cost accounting model threaded through pipelines.
package types

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure class. Transports map these to status codes;
// the core only ever speaks in codes.
type ErrorCode string

const (
	ErrInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrSessionNotFound        ErrorCode = "SESSION_NOT_FOUND"
	ErrSessionAddFactsFailed  ErrorCode = "SESSION_ADD_FACTS_FAILED"
	ErrStrategyNotFound       ErrorCode = "STRATEGY_NOT_FOUND"
	ErrStrategyInvalidOutput  ErrorCode = "STRATEGY_INVALID_OUTPUT"
	ErrStrategyExecution      ErrorCode = "STRATEGY_EXECUTION_ERROR"
	ErrInvalidSIRStructure    ErrorCode = "INVALID_SIR_STRUCTURE"
	ErrJSONParsingFailed      ErrorCode = "JSON_PARSING_FAILED"
	ErrInvalidGeneratedProlog ErrorCode = "INVALID_GENERATED_PROLOG"
	ErrNoFactsExtracted       ErrorCode = "NO_FACTS_EXTRACTED"
	ErrNoRulesExtracted       ErrorCode = "NO_RULES_EXTRACTED"
	ErrEmptyExplanation       ErrorCode = "EMPTY_EXPLANATION_GENERATED"
	ErrLLMEmptyResponse       ErrorCode = "LLM_EMPTY_RESPONSE"
	ErrLLMRequestFailed       ErrorCode = "LLM_REQUEST_FAILED"
	ErrReasonerError          ErrorCode = "REASONER_ERROR"
	ErrPrologQuerySyntax      ErrorCode = "PROLOG_QUERY_SYNTAX"
	ErrInternalKBNotFound     ErrorCode = "INTERNAL_KB_NOT_FOUND"
	ErrPromptTemplateNotFound ErrorCode = "PROMPT_TEMPLATE_NOT_FOUND"
	ErrPromptFormattingFailed ErrorCode = "PROMPT_FORMATTING_FAILED"
	ErrEmbeddingService       ErrorCode = "EMBEDDING_SERVICE_ERROR"
	ErrNotImplemented         ErrorCode = "NOT_IMPLEMENTED"
)

// MCRError is a typed error carrying an ErrorCode and an optional detail
// payload (the offending fragment, the reasoner diagnostic, etc).
type MCRError struct {
	Code    ErrorCode
	Message string
	Details string
}

func (e *MCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds an MCRError without details.
func NewError(code ErrorCode, format string, args ...interface{}) *MCRError {
	return &MCRError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewErrorWithDetails builds an MCRError carrying a detail payload.
func NewErrorWithDetails(code ErrorCode, details, format string, args ...interface{}) *MCRError {
	return &MCRError{Code: code, Message: fmt.Sprintf(format, args...), Details: details}
}

// AsMCRError extracts an MCRError from an error chain. Unclassified errors
// collapse to STRATEGY_EXECUTION_ERROR with the original message preserved
// in Details, so no raw error ever crosses the public boundary.
func AsMCRError(err error) *MCRError {
	if err == nil {
		return nil
	}
	var mcrErr *MCRError
	if errors.As(err, &mcrErr) {
		return mcrErr
	}
	return &MCRError{
		Code:    ErrStrategyExecution,
		Message: "unexpected error during pipeline execution",
		Details: err.Error(),
	}
}
