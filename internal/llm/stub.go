package llm

import (
	"context"
	"strings"
	"sync"

	"github.com/automenta/mcr/internal/types"
)

// Stub is a scripted Client for tests and dry runs. Responses are matched by
// substring of the user prompt, in registration order; unmatched prompts get
// the default response.
type Stub struct {
	mu        sync.Mutex
	model     string
	rules     []stubRule
	fallback  string
	calls     []StubCall
	fixedCost types.Cost
	err       error
}

type stubRule struct {
	contains string
	response string
}

// StubCall records one invocation for assertions.
type StubCall struct {
	System string
	User   string
}

// NewStub creates a stub client reporting the given model ID.
func NewStub(model string) *Stub {
	if model == "" {
		model = "stub-model"
	}
	return &Stub{
		model:     model,
		fixedCost: types.Cost{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15, Calls: 1},
	}
}

// Respond registers a scripted response for prompts containing substr.
func (s *Stub) Respond(substr, response string) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, stubRule{contains: substr, response: response})
	return s
}

// RespondDefault sets the response for unmatched prompts.
func (s *Stub) RespondDefault(response string) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = response
	return s
}

// Fail makes every call return err.
func (s *Stub) Fail(err error) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

// Generate returns the scripted response for the prompt.
func (s *Stub) Generate(ctx context.Context, systemPrompt, userPrompt string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, StubCall{System: systemPrompt, User: userPrompt})

	if s.err != nil {
		return nil, s.err
	}
	for _, rule := range s.rules {
		if strings.Contains(userPrompt, rule.contains) || strings.Contains(systemPrompt, rule.contains) {
			return &Response{Text: rule.response, Cost: s.fixedCost}, nil
		}
	}
	return &Response{Text: s.fallback, Cost: s.fixedCost}, nil
}

// Model returns the stub model identifier.
func (s *Stub) Model() string {
	return s.model
}

// Calls returns all recorded invocations.
func (s *Stub) Calls() []StubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StubCall, len(s.calls))
	copy(out, s.calls)
	return out
}
