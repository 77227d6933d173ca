// Package reasoner wraps the Mangle Datalog engine behind a small gateway:
// validate one clause, or load a KB text and run a single query against it.
// Clause and query text arrives in Prolog-family notation and is bridged to
// engine syntax before parsing.
package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/types"
)

const defaultQueryTimeout = 10 * time.Second

// Solutions is the outcome of one query. A ground query (no variables)
// reduces to a truth value; otherwise each solution is one variable-binding
// record, in deterministic order.
type Solutions struct {
	Ground   bool
	Truth    bool
	Bindings []map[string]string
}

// IsBoolean reports whether the result is a plain truth value.
func (s *Solutions) IsBoolean() bool { return s.Ground }

// Bool returns the truth value of a ground query.
func (s *Solutions) Bool() bool { return s.Truth }

// Empty reports whether the query produced no solutions.
func (s *Solutions) Empty() bool {
	if s.Ground {
		return !s.Truth
	}
	return len(s.Bindings) == 0
}

// JSON renders the solutions for prompt injection: "true"/"false" for ground
// queries, else a JSON array of binding objects.
func (s *Solutions) JSON() string {
	if s.Ground {
		return strconv.FormatBool(s.Truth)
	}
	if len(s.Bindings) == 0 {
		return "[]"
	}
	data, err := json.Marshal(s.Bindings)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// Gateway validates clauses and executes queries. It holds no KB state; each
// query evaluates the supplied KB text from scratch, which gives every query
// a consistent snapshot for free.
type Gateway struct {
	timeout time.Duration
}

// New creates a gateway with the given per-query evaluation timeout.
// Zero means the default.
func New(timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Gateway{timeout: timeout}
}

// ValidateClause checks one clause for syntax errors without side effects.
// A failure is reported as INVALID_GENERATED_PROLOG carrying the engine
// diagnostic.
func (g *Gateway) ValidateClause(clause string) error {
	trimmed := strings.TrimSpace(clause)
	if trimmed == "" {
		return types.NewError(types.ErrInvalidGeneratedProlog, "empty clause")
	}
	if !strings.HasSuffix(trimmed, ".") {
		return types.NewErrorWithDetails(types.ErrInvalidGeneratedProlog, trimmed,
			"clause is not terminated with a period")
	}

	unit, err := parse.Unit(strings.NewReader(toEngineSyntax(trimmed)))
	if err != nil {
		return types.NewErrorWithDetails(types.ErrInvalidGeneratedProlog, err.Error(),
			"invalid clause: %s", trimmed)
	}
	if len(unit.Clauses) == 0 {
		return types.NewErrorWithDetails(types.ErrInvalidGeneratedProlog, trimmed,
			"clause parsed to nothing")
	}
	return nil
}

// ValidateClauses checks each clause in order and returns the first failure.
func (g *Gateway) ValidateClauses(clauses []string) error {
	for _, clause := range clauses {
		if err := g.ValidateClause(clause); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteQuery loads kbText as a program, evaluates it to fixpoint, and
// matches the query atom against the derived facts. The query must be a
// single atom; conjunctive goals belong in rules.
func (g *Gateway) ExecuteQuery(ctx context.Context, kbText, query string) (*Solutions, error) {
	goalText := normalizeQuery(query)
	if goalText == "" {
		return nil, types.NewError(types.ErrPrologQuerySyntax, "empty query")
	}

	goal, err := parse.Atom(toEngineSyntax(goalText))
	if err != nil {
		return nil, types.NewErrorWithDetails(types.ErrPrologQuerySyntax, err.Error(),
			"cannot parse query: %s", query)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	timer := logging.StartTimer(logging.CategoryReasoner, "execute_query")
	defer timer.StopWithThreshold(time.Second)

	type outcome struct {
		solutions *Solutions
		err       error
	}
	done := make(chan outcome, 1)
	go func() {
		s, err := g.evaluate(kbText, goal)
		done <- outcome{solutions: s, err: err}
	}()

	select {
	case out := <-done:
		return out.solutions, out.err
	case <-ctx.Done():
		return nil, types.NewErrorWithDetails(types.ErrReasonerError, ctx.Err().Error(),
			"query evaluation timed out")
	}
}

func (g *Gateway) evaluate(kbText string, goal ast.Atom) (*Solutions, error) {
	program := toEngineSyntax(kbText)

	unit, err := parse.Unit(strings.NewReader(program))
	if err != nil {
		return nil, types.NewErrorWithDetails(types.ErrReasonerError, err.Error(),
			"knowledge base does not parse")
	}

	// Predicates referenced only in rule bodies would fail analysis as
	// unknown; declare them so they evaluate as empty relations instead.
	if decls := missingDeclText(unit); decls != "" {
		unit, err = parse.Unit(strings.NewReader(program + "\n" + decls))
		if err != nil {
			return nil, types.NewErrorWithDetails(types.ErrReasonerError, err.Error(),
				"knowledge base does not parse")
		}
	}

	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, types.NewErrorWithDetails(types.ErrReasonerError, err.Error(),
			"knowledge base analysis failed")
	}

	store := factstore.NewSimpleInMemoryStore()
	for _, fact := range programInfo.InitialFacts {
		store.Add(fact)
	}
	if err := mengine.EvalProgram(programInfo, store); err != nil {
		return nil, types.NewErrorWithDetails(types.ErrReasonerError, err.Error(),
			"evaluation failed")
	}

	solutions := matchGoal(store, goal)
	logging.ReasonerDebug("Query %s: ground=%v solutions=%d",
		goal.Predicate.Symbol, solutions.Ground, len(solutions.Bindings))
	return solutions, nil
}

// matchGoal enumerates derived facts for the goal predicate and unifies each
// against the goal atom.
func matchGoal(store factstore.FactStore, goal ast.Atom) *Solutions {
	solutions := &Solutions{Ground: isGround(goal)}

	_ = store.GetFacts(ast.NewQuery(goal.Predicate), func(fact ast.Atom) error {
		bindings, ok := unify(goal, fact)
		if !ok {
			return nil
		}
		if solutions.Ground {
			solutions.Truth = true
			return nil
		}
		solutions.Bindings = append(solutions.Bindings, bindings)
		return nil
	})

	// Store iteration order is not stable; order solutions by content.
	sort.Slice(solutions.Bindings, func(i, j int) bool {
		return bindingKey(solutions.Bindings[i]) < bindingKey(solutions.Bindings[j])
	})
	return solutions
}

func isGround(atom ast.Atom) bool {
	for _, arg := range atom.Args {
		if _, ok := arg.(ast.Variable); ok {
			return false
		}
	}
	return true
}

func unify(goal, fact ast.Atom) (map[string]string, bool) {
	if len(goal.Args) != len(fact.Args) {
		return nil, false
	}

	bound := make(map[string]ast.Constant)
	for i, arg := range goal.Args {
		factConst, ok := fact.Args[i].(ast.Constant)
		if !ok {
			return nil, false
		}
		switch t := arg.(type) {
		case ast.Variable:
			if t.Symbol == "_" {
				continue
			}
			if prev, seen := bound[t.Symbol]; seen {
				if !sameConstant(prev, factConst) {
					return nil, false
				}
				continue
			}
			bound[t.Symbol] = factConst
		case ast.Constant:
			if !sameConstant(t, factConst) {
				return nil, false
			}
		default:
			return nil, false
		}
	}

	bindings := make(map[string]string, len(bound))
	for name, c := range bound {
		bindings[name] = renderConstant(c)
	}
	return bindings, true
}

func sameConstant(a, b ast.Constant) bool {
	return a.Type == b.Type && a.Symbol == b.Symbol && a.NumValue == b.NumValue
}

// renderConstant converts an engine constant back to Prolog-family surface
// form: /sky -> sky, strings and numbers verbatim.
func renderConstant(c ast.Constant) string {
	switch c.Type {
	case ast.NameType:
		return strings.TrimPrefix(c.Symbol, "/")
	case ast.StringType:
		return c.Symbol
	case ast.NumberType:
		return strconv.FormatInt(c.NumValue, 10)
	case ast.Float64Type:
		return strconv.FormatFloat(math.Float64frombits(uint64(c.NumValue)), 'g', -1, 64)
	default:
		return c.String()
	}
}

func bindingKey(b map[string]string) string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(b[k])
		sb.WriteByte(';')
	}
	return sb.String()
}

// missingDeclText returns Decl lines for predicates used in rule bodies but
// never defined by a fact or rule head in the unit.
func missingDeclText(unit parse.SourceUnit) string {
	defined := make(map[ast.PredicateSym]bool)
	for _, clause := range unit.Clauses {
		defined[clause.Head.Predicate] = true
	}
	for _, decl := range unit.Decls {
		defined[decl.DeclaredAtom.Predicate] = true
	}

	missing := make(map[ast.PredicateSym]bool)
	for _, clause := range unit.Clauses {
		for _, premise := range clause.Premises {
			var atom ast.Atom
			switch p := premise.(type) {
			case ast.Atom:
				atom = p
			case ast.NegAtom:
				atom = p.Atom
			default:
				continue
			}
			sym := atom.Predicate
			if strings.HasPrefix(sym.Symbol, ":") {
				continue
			}
			if !defined[sym] {
				missing[sym] = true
			}
		}
	}
	if len(missing) == 0 {
		return ""
	}

	syms := make([]ast.PredicateSym, 0, len(missing))
	for sym := range missing {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].Symbol < syms[j].Symbol })

	var sb strings.Builder
	for _, sym := range syms {
		args := make([]string, sym.Arity)
		for i := range args {
			args[i] = fmt.Sprintf("X%d", i)
		}
		fmt.Fprintf(&sb, "Decl %s(%s).\n", sym.Symbol, strings.Join(args, ", "))
	}
	return sb.String()
}
