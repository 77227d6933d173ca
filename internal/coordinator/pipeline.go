package coordinator

import (
	"context"
	"strings"

	"github.com/automenta/mcr/internal/broadcast"
	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/reasoner"
	"github.com/automenta/mcr/internal/session"
	"github.com/automenta/mcr/internal/strategy"
	"github.com/automenta/mcr/internal/types"
)

const defaultAnswerStyle = "conversational"

// QueryOptions tunes a single queryNL call.
type QueryOptions struct {
	// DynamicOntology is extra clause text appended to the KB for this query only.
	DynamicOntology string
	// Style is the requested answer register, e.g. "conversational" or "formal".
	Style string
	// Debug overrides the configured debug level for this call when non-empty.
	Debug types.DebugLevel
}

// AssertNL translates natural-language text into clauses and appends them to
// the session KB atomically. On success the result carries the added clauses,
// the strategy that produced them, and the accumulated LLM cost.
func (c *Coordinator) AssertNL(ctx context.Context, sessionID, text string) AssertResult {
	timer := logging.StartTimer(logging.CategoryCoordinator, "assert_nl")
	defer timer.Stop()

	s, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return AssertResult{Result: types.FailErr(err)}
	}

	strat, err := c.resolveStrategy(ctx, s, text, strategy.OpAssert)
	if err != nil {
		return AssertResult{Result: types.FailErr(err)}
	}

	acc := &types.CostAccumulator{}
	fail := func(err error) AssertResult {
		r := types.FailErr(err)
		r.StrategyID = strat.ID
		r.Cost = acc.Total()
		return AssertResult{Result: r}
	}

	clauses, err := c.executor.ExecuteAssert(ctx, strat, c.assertContext(s, text), acc)
	if err != nil {
		return fail(err)
	}
	if len(clauses) == 0 {
		return fail(types.NewError(types.ErrNoFactsExtracted,
			"no facts could be extracted from the input"))
	}
	if err := c.reasoner.ValidateClauses(clauses); err != nil {
		return fail(err)
	}

	if err := c.store.AddClauses(ctx, sessionID, clauses); err != nil {
		return fail(err)
	}
	c.notifyKBUpdate(ctx, sessionID, clauses)

	logging.Coordinator("Asserted %d clauses to session %s via %s", len(clauses), sessionID, strat.ID)
	result := types.OK()
	result.StrategyID = strat.ID
	result.Cost = acc.Total()
	return AssertResult{Result: result, AddedClauses: clauses}
}

// AssertRawClauses appends already-symbolic clause text to the session KB,
// bypassing translation. The text is split on terminal periods; every clause
// must validate before any is appended.
func (c *Coordinator) AssertRawClauses(ctx context.Context, sessionID, text string) AssertResult {
	if _, err := c.store.Get(ctx, sessionID); err != nil {
		return AssertResult{Result: types.FailErr(err)}
	}

	clauses := SplitClauses(text)
	if len(clauses) == 0 {
		return AssertResult{Result: types.Fail(types.NewError(types.ErrNoFactsExtracted,
			"no clauses found in input"))}
	}
	if err := c.reasoner.ValidateClauses(clauses); err != nil {
		return AssertResult{Result: types.FailErr(err)}
	}

	if err := c.store.AddClauses(ctx, sessionID, clauses); err != nil {
		return AssertResult{Result: types.FailErr(err)}
	}
	c.notifyKBUpdate(ctx, sessionID, clauses)

	logging.Coordinator("Asserted %d raw clauses to session %s", len(clauses), sessionID)
	return AssertResult{Result: types.OK(), AddedClauses: clauses}
}

// QueryNL answers a natural-language question: translate to a logic query,
// run it against session KB plus ontologies, then render the solutions back
// to natural language.
func (c *Coordinator) QueryNL(ctx context.Context, sessionID, question string, opts QueryOptions) AnswerResult {
	timer := logging.StartTimer(logging.CategoryCoordinator, "query_nl")
	defer timer.Stop()

	debug := c.newDebugInfo(opts.Debug)

	s, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return AnswerResult{Result: types.FailErr(err)}
	}

	strat, err := c.resolveStrategy(ctx, s, question, strategy.OpQuery)
	if err != nil {
		return AnswerResult{Result: types.FailErr(err)}
	}
	debug.Set("strategyId", strat.ID)

	acc := &types.CostAccumulator{}
	fail := func(err error) AnswerResult {
		r := types.FailErr(err)
		r.StrategyID = strat.ID
		r.Cost = acc.Total()
		return AnswerResult{Result: r, DebugInfo: debug}
	}

	query, err := c.executor.ExecuteQuery(ctx, strat, c.queryContext(s, question), acc)
	if err != nil {
		return fail(err)
	}
	debug.Set("prologQuery", query)

	kb := c.assembleKB(s, opts.DynamicOntology)
	solutions, err := c.reasoner.ExecuteQuery(ctx, kb, query)
	if err != nil {
		return fail(err)
	}
	debug.Set("solutionCount", solutionCount(solutions))
	if c.debugVerbose(opts.Debug) {
		debug.Set("knowledgeBase", kb)
		debug.Set("solutions", solutions.JSON())
		debug.Set("lexiconSummary", s.LexiconSummary())
	}

	style := opts.Style
	if style == "" {
		style = defaultAnswerStyle
	}
	answer, err := c.renderAnswer(ctx, question, solutions.JSON(), style, acc)
	if err != nil {
		return fail(err)
	}

	logging.Coordinator("Answered query on session %s via %s (%s)", sessionID, strat.ID, query)
	result := types.OK()
	result.StrategyID = strat.ID
	result.Cost = acc.Total()
	return AnswerResult{Result: result, Answer: answer, DebugInfo: debug}
}

// ExplainQuery translates the question to a logic query and asks the LLM to
// explain what that query will do, without executing it.
func (c *Coordinator) ExplainQuery(ctx context.Context, sessionID, question string) AnswerResult {
	debug := c.newDebugInfo("")

	s, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return AnswerResult{Result: types.FailErr(err)}
	}

	strat, err := c.resolveStrategy(ctx, s, question, strategy.OpQuery)
	if err != nil {
		return AnswerResult{Result: types.FailErr(err)}
	}
	debug.Set("strategyId", strat.ID)

	acc := &types.CostAccumulator{}
	fail := func(err error) AnswerResult {
		r := types.FailErr(err)
		r.StrategyID = strat.ID
		r.Cost = acc.Total()
		return AnswerResult{Result: r, DebugInfo: debug}
	}

	query, err := c.executor.ExecuteQuery(ctx, strat, c.queryContext(s, question), acc)
	if err != nil {
		return fail(err)
	}
	debug.Set("prologQuery", query)

	system, user, err := c.prompts.Fill("EXPLAIN_PROLOG_QUERY", map[string]string{
		"question":       question,
		"prologQuery":    query,
		"lexiconSummary": s.LexiconSummary(),
	})
	if err != nil {
		return fail(err)
	}

	response, err := c.llm.Generate(ctx, system, user)
	if err != nil {
		return fail(types.NewErrorWithDetails(types.ErrLLMRequestFailed, err.Error(),
			"explanation request failed"))
	}
	acc.Record(response.Cost)

	explanation := strings.TrimSpace(response.Text)
	if explanation == "" {
		return fail(types.NewError(types.ErrEmptyExplanation,
			"model produced an empty explanation"))
	}

	result := types.OK()
	result.StrategyID = strat.ID
	result.Cost = acc.Total()
	return AnswerResult{Result: result, Answer: explanation, DebugInfo: debug}
}

// TranslateNLToClauses runs the assert translation pipeline without a
// session, returning the clauses instead of storing them. An empty
// strategyID uses the system default.
func (c *Coordinator) TranslateNLToClauses(ctx context.Context, text, strategyID string) TranslateResult {
	base := strategyID
	if base == "" {
		base = c.defaultStrategy
	}
	strat, err := c.strategies.Resolve(base, strategy.OpAssert)
	if err != nil {
		return TranslateResult{Result: types.FailErr(err)}
	}

	acc := &types.CostAccumulator{}
	fail := func(err error) TranslateResult {
		r := types.FailErr(err)
		r.StrategyID = strat.ID
		r.Cost = acc.Total()
		return TranslateResult{Result: r}
	}

	clauses, err := c.executor.ExecuteAssert(ctx, strat, c.assertContext(nil, text), acc)
	if err != nil {
		return fail(err)
	}
	if len(clauses) == 0 {
		return fail(types.NewError(types.ErrNoRulesExtracted,
			"no rules could be extracted from the input"))
	}

	result := types.OK()
	result.StrategyID = strat.ID
	result.Cost = acc.Total()
	return TranslateResult{Result: result, Clauses: clauses}
}

// TranslateClausesToNL renders symbolic clauses as a natural-language
// explanation. Each clause is trimmed and gets a terminal period if missing.
func (c *Coordinator) TranslateClausesToNL(ctx context.Context, clauses []string, style string) TranslateResult {
	normalized := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if !strings.HasSuffix(clause, ".") {
			clause += "."
		}
		normalized = append(normalized, clause)
	}
	if len(normalized) == 0 {
		return TranslateResult{Result: types.Fail(types.NewError(types.ErrInvalidInput,
			"no clauses to translate"))}
	}

	if style == "" {
		style = defaultAnswerStyle
	}
	system, user, err := c.prompts.Fill("RULES_TO_NL", map[string]string{
		"clauses": strings.Join(normalized, "\n"),
		"style":   style,
	})
	if err != nil {
		return TranslateResult{Result: types.FailErr(err)}
	}

	acc := &types.CostAccumulator{}
	response, err := c.llm.Generate(ctx, system, user)
	if err != nil {
		r := types.FailErr(types.NewErrorWithDetails(types.ErrLLMRequestFailed, err.Error(),
			"translation request failed"))
		r.Cost = acc.Total()
		return TranslateResult{Result: r}
	}
	acc.Record(response.Cost)

	explanation := strings.TrimSpace(response.Text)
	if explanation == "" {
		r := types.Fail(types.NewError(types.ErrEmptyExplanation,
			"model produced an empty explanation"))
		r.Cost = acc.Total()
		return TranslateResult{Result: r}
	}

	result := types.OK()
	result.Cost = acc.Total()
	return TranslateResult{Result: result, Clauses: normalized, Explanation: explanation}
}

// resolveStrategy picks the concrete strategy for one operation: the
// session's override if set, else the router's suggestion for this input,
// else the system default. A base that cannot be resolved falls back to the
// default before failing.
func (c *Coordinator) resolveStrategy(ctx context.Context, s *session.Session, text string, op strategy.Operation) (*strategy.Strategy, error) {
	base := s.ActiveStrategyID
	if base == "" {
		base = c.router.Route(ctx, text, c.llm.Model())
	}
	if base == "" {
		base = c.defaultStrategy
	}

	strat, err := c.strategies.Resolve(base, op)
	if err != nil && base != c.defaultStrategy {
		logging.CoordinatorDebug("Strategy %s unavailable for %s, falling back to %s", base, op, c.defaultStrategy)
		strat, err = c.strategies.Resolve(c.defaultStrategy, op)
	}
	if err != nil {
		return nil, err
	}
	return strat, nil
}

// assertContext builds the executor bindings for an assert pipeline. A nil
// session means the sessionless translation path.
func (c *Coordinator) assertContext(s *session.Session, text string) map[string]interface{} {
	facts, lexicon := "", ""
	if s != nil {
		facts = s.KnowledgeBase()
		lexicon = s.LexiconSummary()
	}
	return map[string]interface{}{
		"naturalLanguageText": text,
		"existingFacts":       facts,
		"ontologyRules":       c.ontologies.Snapshot(),
		"lexiconSummary":      lexicon,
		"llm_model_id":        c.llm.Model(),
	}
}

func (c *Coordinator) queryContext(s *session.Session, question string) map[string]interface{} {
	return map[string]interface{}{
		"naturalLanguageQuestion": question,
		"existingFacts":           s.KnowledgeBase(),
		"ontologyRules":           c.ontologies.Snapshot(),
		"lexiconSummary":          s.LexiconSummary(),
		"llm_model_id":            c.llm.Model(),
	}
}

// assembleKB builds the program text a query runs against: session clauses,
// then the ontology snapshot, then any per-query dynamic ontology, each under
// a comment label.
func (c *Coordinator) assembleKB(s *session.Session, dynamicOntology string) string {
	var b strings.Builder
	b.WriteString("% --- session ---\n")
	b.WriteString(s.KnowledgeBase())

	if snapshot := c.ontologies.Snapshot(); snapshot != "" {
		b.WriteString("\n")
		b.WriteString(snapshot)
	}
	if dynamic := strings.TrimSpace(dynamicOntology); dynamic != "" {
		b.WriteString("\n% --- dynamic ontology ---\n")
		b.WriteString(dynamic)
	}
	return b.String()
}

// renderAnswer turns the solutions JSON into prose via LOGIC_TO_NL_ANSWER.
func (c *Coordinator) renderAnswer(ctx context.Context, question, solutionsJSON, style string, acc *types.CostAccumulator) (string, error) {
	system, user, err := c.prompts.Fill("LOGIC_TO_NL_ANSWER", map[string]string{
		"question":      question,
		"solutionsJson": solutionsJSON,
		"style":         style,
	})
	if err != nil {
		return "", err
	}

	response, err := c.llm.Generate(ctx, system, user)
	if err != nil {
		return "", types.NewErrorWithDetails(types.ErrLLMRequestFailed, err.Error(),
			"answer rendering failed")
	}
	acc.Record(response.Cost)

	answer := strings.TrimSpace(response.Text)
	if answer == "" {
		return "", types.NewError(types.ErrLLMEmptyResponse, "model produced an empty answer")
	}
	return answer, nil
}

// notifyKBUpdate publishes the post-append KB state to subscribers. A fetch
// failure only skips the notification; the assertion already succeeded.
func (c *Coordinator) notifyKBUpdate(ctx context.Context, sessionID string, newClauses []string) {
	s, err := c.store.Get(ctx, sessionID)
	if err != nil {
		logging.Get(logging.CategoryBroadcast).Warn("Skipping KB update event for %s: %v", sessionID, err)
		return
	}
	c.broadcaster.Broadcast(broadcast.Event{
		SessionID:         s.ID,
		NewClauses:        newClauses,
		FullKnowledgeBase: s.KnowledgeBase(),
	})
}

func (c *Coordinator) newDebugInfo(override types.DebugLevel) types.DebugInfo {
	level := c.debugLevel
	if override != "" {
		level = override
	}
	if level == types.DebugNone {
		return nil
	}
	return types.DebugInfo{}
}

func (c *Coordinator) debugVerbose(override types.DebugLevel) bool {
	level := c.debugLevel
	if override != "" {
		level = override
	}
	return level == types.DebugVerbose
}

func solutionCount(s *reasoner.Solutions) int {
	if s.IsBoolean() {
		if s.Bool() {
			return 1
		}
		return 0
	}
	return len(s.Bindings)
}

// SplitClauses splits raw clause text on terminal periods, respecting quoted
// strings, and returns each clause with its period restored.
func SplitClauses(text string) []string {
	var clauses []string
	var current strings.Builder
	inString := false
	escaped := false

	for _, r := range text {
		current.WriteRune(r)
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		case r == '.' && !inString:
			if clause := strings.TrimSpace(current.String()); clause != "." {
				clauses = append(clauses, clause)
			}
			current.Reset()
		}
	}
	if tail := strings.TrimSpace(current.String()); tail != "" {
		clauses = append(clauses, tail+".")
	}
	return clauses
}
