package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/automenta/mcr/internal/llm"
	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/prompts"
	"github.com/automenta/mcr/internal/types"
)

// ClauseValidator is the slice of the reasoner gateway the executor needs.
type ClauseValidator interface {
	ValidateClauses(clauses []string) error
}

// Executor interprets a strategy's node DAG sequentially over a context map.
// It holds no per-strategy state; everything request-scoped lives in the
// context map owned by one Execute call.
type Executor struct {
	llm       llm.Client
	prompts   *prompts.Registry
	validator ClauseValidator
}

// NewExecutor wires the executor's collaborators.
func NewExecutor(client llm.Client, registry *prompts.Registry, validator ClauseValidator) *Executor {
	return &Executor{llm: client, prompts: registry, validator: validator}
}

// Execute runs the pipeline over initial bindings and returns the Return
// node's value. LLM cost deltas accumulate into acc, including on failure
// paths, so callers always see what a run cost.
func (e *Executor) Execute(ctx context.Context, s *Strategy, initial map[string]interface{}, acc *types.CostAccumulator) (interface{}, error) {
	timer := logging.StartTimer(logging.CategoryStrategy, "execute_"+s.ID)
	defer timer.StopWithThreshold(5 * time.Second)

	bindings := make(map[string]interface{}, len(initial)+len(s.Nodes))
	for name, value := range initial {
		bindings[name] = value
	}

	for i, node := range s.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, types.NewErrorWithDetails(types.ErrStrategyExecution, err.Error(),
				"pipeline %s cancelled at node %d", s.ID, i)
		}

		switch node.Kind {
		case KindLLMCall:
			if err := e.runLLMCall(ctx, node, bindings, acc); err != nil {
				return nil, err
			}
		case KindParseJSON:
			if err := runParseJSON(node, bindings); err != nil {
				return nil, err
			}
		case KindSIRTransform:
			if err := runSIRTransform(node, bindings); err != nil {
				return nil, err
			}
		case KindValidateClauses:
			if err := e.runValidate(node, bindings); err != nil {
				return nil, err
			}
		case KindReturn:
			value, ok := bindings[node.Input]
			if !ok {
				return nil, types.NewError(types.ErrStrategyExecution,
					"pipeline %s: Return references unknown name %q", s.ID, node.Input)
			}
			return value, nil
		}
	}
	return nil, types.NewError(types.ErrStrategyExecution, "pipeline %s ended without Return", s.ID)
}

// ExecuteAssert runs an assert pipeline and coerces the result to a clause
// list, raising STRATEGY_INVALID_OUTPUT on any other shape.
func (e *Executor) ExecuteAssert(ctx context.Context, s *Strategy, initial map[string]interface{}, acc *types.CostAccumulator) ([]string, error) {
	value, err := e.Execute(ctx, s, initial, acc)
	if err != nil {
		return nil, err
	}
	clauses, err := coerceClauseList(value)
	if err != nil {
		return nil, types.NewErrorWithDetails(types.ErrStrategyInvalidOutput, err.Error(),
			"assert pipeline %s produced a non-clause-list result", s.ID)
	}
	return clauses, nil
}

// ExecuteQuery runs a query pipeline and coerces the result to a single
// period-terminated query string.
func (e *Executor) ExecuteQuery(ctx context.Context, s *Strategy, initial map[string]interface{}, acc *types.CostAccumulator) (string, error) {
	value, err := e.Execute(ctx, s, initial, acc)
	if err != nil {
		return "", err
	}

	text, ok := value.(string)
	if !ok {
		return "", types.NewError(types.ErrStrategyInvalidOutput,
			"query pipeline %s produced %T, want a query string", s.ID, value)
	}
	query := strings.TrimSpace(stripFences(text))
	if query == "" || strings.Contains(query, "\n") {
		return "", types.NewErrorWithDetails(types.ErrStrategyInvalidOutput, text,
			"query pipeline %s must produce exactly one query", s.ID)
	}
	if !strings.HasSuffix(query, ".") {
		query += "."
	}
	return query, nil
}

func (e *Executor) runLLMCall(ctx context.Context, node Node, bindings map[string]interface{}, acc *types.CostAccumulator) error {
	vars := make(map[string]string, len(node.InputBindings))
	for placeholder, contextName := range node.InputBindings {
		value, ok := bindings[contextName]
		if !ok {
			return types.NewError(types.ErrPromptFormattingFailed,
				"binding for %q references unknown context name %q", placeholder, contextName)
		}
		vars[placeholder] = stringifyBinding(value)
	}

	system, user, err := e.prompts.Fill(node.PromptName, vars)
	if err != nil {
		return err
	}

	response, err := e.llm.Generate(ctx, system, user)
	if err != nil {
		return types.NewErrorWithDetails(types.ErrLLMRequestFailed, err.Error(),
			"LLM call for prompt %s failed", node.PromptName)
	}
	acc.Record(response.Cost)

	if strings.TrimSpace(response.Text) == "" {
		return types.NewError(types.ErrLLMEmptyResponse,
			"LLM returned empty text for prompt %s", node.PromptName)
	}

	logging.StrategyDebug("LLMCall %s -> %s (%d chars, %d tokens)",
		node.PromptName, node.OutputName, len(response.Text), response.Cost.TotalTokens)
	bindings[node.OutputName] = response.Text
	return nil
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// stripFences unwraps a Markdown code fence if the text contains one.
func stripFences(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

func runParseJSON(node Node, bindings map[string]interface{}) error {
	raw, err := contextString(node.Input, bindings)
	if err != nil {
		return err
	}

	candidate := strings.TrimSpace(stripFences(raw))
	var parsed interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		prefix := candidate
		if len(prefix) > 120 {
			prefix = prefix[:120]
		}
		return types.NewErrorWithDetails(types.ErrJSONParsingFailed, prefix,
			"cannot parse %s as JSON: %v", node.Input, err)
	}
	bindings[node.OutputName] = parsed
	return nil
}

func runSIRTransform(node Node, bindings map[string]interface{}) error {
	value, ok := bindings[node.Input]
	if !ok {
		return types.NewError(types.ErrStrategyExecution,
			"SIRTransform references unknown context name %q", node.Input)
	}
	clauses, err := sirToClauses(value)
	if err != nil {
		return err
	}
	bindings[node.OutputName] = clauses
	return nil
}

func (e *Executor) runValidate(node Node, bindings map[string]interface{}) error {
	value, ok := bindings[node.Input]
	if !ok {
		return types.NewError(types.ErrStrategyExecution,
			"ValidateClauses references unknown context name %q", node.Input)
	}
	clauses, err := coerceClauseList(value)
	if err != nil {
		return types.NewErrorWithDetails(types.ErrStrategyInvalidOutput, err.Error(),
			"ValidateClauses input %q is not a clause list", node.Input)
	}
	if err := e.validator.ValidateClauses(clauses); err != nil {
		return err
	}
	// Normalize so downstream nodes see []string regardless of JSON origin.
	bindings[node.Input] = clauses
	return nil
}

// coerceClauseList accepts []string or a JSON []interface{} of strings.
func coerceClauseList(value interface{}) ([]string, error) {
	switch t := value.(type) {
	case []string:
		return t, nil
	case []interface{}:
		out := make([]string, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, want string", i, item)
			}
			out[i] = strings.TrimSpace(s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("got %T, want a list of clause strings", value)
	}
}

func contextString(name string, bindings map[string]interface{}) (string, error) {
	value, ok := bindings[name]
	if !ok {
		return "", types.NewError(types.ErrStrategyExecution,
			"node references unknown context name %q", name)
	}
	s, ok := value.(string)
	if !ok {
		return "", types.NewError(types.ErrStrategyExecution,
			"context name %q holds %T, want string", name, value)
	}
	return s, nil
}

// stringifyBinding renders a context value for prompt injection.
func stringifyBinding(value interface{}) string {
	switch t := value.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, "\n")
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(data)
	}
}
