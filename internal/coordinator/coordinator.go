// Package coordinator is the public facade of the reasoning service. Every
// operation returns a structured result; no error crosses this boundary as a
// plain Go error.
package coordinator

import (
	"context"

	"github.com/automenta/mcr/internal/broadcast"
	"github.com/automenta/mcr/internal/config"
	"github.com/automenta/mcr/internal/embedding"
	"github.com/automenta/mcr/internal/llm"
	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/ontology"
	"github.com/automenta/mcr/internal/perf"
	"github.com/automenta/mcr/internal/prompts"
	"github.com/automenta/mcr/internal/reasoner"
	"github.com/automenta/mcr/internal/router"
	"github.com/automenta/mcr/internal/session"
	"github.com/automenta/mcr/internal/strategy"
	"github.com/automenta/mcr/internal/types"
)

// Coordinator wires the translation pipeline together: session state,
// strategies, prompts, the LLM gateway, the reasoner, ontologies, routing,
// and the KB-update broadcaster.
type Coordinator struct {
	store       session.Store
	strategies  *strategy.Registry
	prompts     *prompts.Registry
	executor    *strategy.Executor
	reasoner    *reasoner.Gateway
	ontologies  ontology.Registry
	router      router.Router
	llm         llm.Client
	broadcaster *broadcast.Broadcaster

	defaultStrategy string
	debugLevel      types.DebugLevel
}

// Options carries the collaborators for New. Nil Router, Ontologies, and
// Broadcaster degrade to no-ops.
type Options struct {
	Store           session.Store
	Strategies      *strategy.Registry
	Prompts         *prompts.Registry
	Reasoner        *reasoner.Gateway
	Ontologies      ontology.Registry
	Router          router.Router
	LLM             llm.Client
	Broadcaster     *broadcast.Broadcaster
	DefaultStrategy string
	DebugLevel      types.DebugLevel
}

// New assembles a coordinator from prebuilt collaborators.
func New(o Options) *Coordinator {
	if o.Strategies == nil {
		o.Strategies = strategy.NewRegistry()
	}
	if o.Prompts == nil {
		o.Prompts = prompts.NewRegistry()
	}
	if o.Router == nil {
		o.Router = router.None{}
	}
	if o.Ontologies == nil {
		o.Ontologies = ontology.NewStatic(nil)
	}
	if o.Broadcaster == nil {
		o.Broadcaster = broadcast.New()
	}
	if o.DefaultStrategy == "" {
		o.DefaultStrategy = "SIR-R1"
	}
	if o.DebugLevel == "" {
		o.DebugLevel = types.DebugBasic
	}

	return &Coordinator{
		store:           o.Store,
		strategies:      o.Strategies,
		prompts:         o.Prompts,
		executor:        strategy.NewExecutor(o.LLM, o.Prompts, o.Reasoner),
		reasoner:        o.Reasoner,
		ontologies:      o.Ontologies,
		router:          o.Router,
		llm:             o.LLM,
		broadcaster:     o.Broadcaster,
		defaultStrategy: o.DefaultStrategy,
		debugLevel:      o.DebugLevel,
	}
}

// Bootstrap builds a coordinator and its collaborators from configuration.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Coordinator, error) {
	client, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := session.NewStoreFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	var ontologies ontology.Registry
	if cfg.OntologyDir != "" {
		dir, err := ontology.NewDirectory(cfg.OntologyDir)
		if err != nil {
			return nil, err
		}
		if err := dir.Start(ctx); err != nil {
			logging.Get(logging.CategoryOntology).Warn("Ontology watch unavailable: %v", err)
		}
		ontologies = dir
	} else {
		ontologies = ontology.NewStatic(nil)
	}

	var perfDB *perf.DB
	if cfg.Router.PerfDB != "" {
		perfDB, err = perf.Open(cfg.Router.PerfDB)
		if err != nil {
			logging.Get(logging.CategoryRouter).Warn("Performance DB unavailable: %v", err)
			perfDB = nil
		}
	}

	var rt router.Router
	switch cfg.Router.Variant {
	case "semantic":
		embCfg := embedding.Config{
			Provider: cfg.Embedding.Provider,
			Model:    cfg.Embedding.OllamaModel,
			Endpoint: cfg.Embedding.OllamaEndpoint,
			APIKey:   cfg.Embedding.GenAIAPIKey,
		}
		if embCfg.Provider == "genai" || embCfg.Provider == "gemini" {
			embCfg.Model = cfg.Embedding.GenAIModel
		}
		engine, err := embedding.NewEngine(ctx, embCfg)
		if err != nil {
			return nil, err
		}
		rt = router.NewSemantic(engine, perfDB, nil)
	case "keyword":
		rt = router.NewKeyword(perfDB)
	default:
		rt = router.None{}
	}

	logging.Boot("Coordinator ready: store=%s strategy=%s router=%s model=%s",
		cfg.SessionStore.Type, cfg.TranslationStrategy, cfg.Router.Variant, client.Model())

	return New(Options{
		Store:           store,
		Reasoner:        reasoner.New(cfg.ReasonerTimeout()),
		Ontologies:      ontologies,
		Router:          rt,
		LLM:             client,
		DefaultStrategy: cfg.TranslationStrategy,
		DebugLevel:      types.DebugLevel(cfg.DebugLevel),
	}), nil
}

// Broadcaster exposes the event hub so transports can subscribe.
func (c *Coordinator) Broadcaster() *broadcast.Broadcaster {
	return c.broadcaster
}

// SessionResult wraps a single-session operation.
type SessionResult struct {
	types.Result
	Session *session.Session `json:"session,omitempty"`
}

// SessionListResult wraps listSessions.
type SessionListResult struct {
	types.Result
	Sessions []*session.Session `json:"sessions,omitempty"`
}

// AssertResult wraps assertNL / assertRawClauses.
type AssertResult struct {
	types.Result
	AddedClauses []string `json:"added_clauses,omitempty"`
}

// AnswerResult wraps queryNL and explainQuery.
type AnswerResult struct {
	types.Result
	Answer    string          `json:"answer,omitempty"`
	DebugInfo types.DebugInfo `json:"debug_info,omitempty"`
}

// TranslateResult wraps the sessionless translation operations.
type TranslateResult struct {
	types.Result
	Clauses     []string `json:"clauses,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// TextResult wraps operations returning one string.
type TextResult struct {
	types.Result
	Text string `json:"text,omitempty"`
}

// PromptsResult wraps getPrompts / debugFormatPrompt.
type PromptsResult struct {
	types.Result
	Templates map[string]prompts.Template `json:"templates,omitempty"`
	Preview   map[string]string           `json:"preview,omitempty"`
}

// CreateSession makes a session, generating an ID when none is supplied.
func (c *Coordinator) CreateSession(ctx context.Context, id string) SessionResult {
	s, err := c.store.Create(ctx, id)
	if err != nil {
		return SessionResult{Result: types.FailErr(err)}
	}
	logging.Coordinator("Created session %s", s.ID)
	return SessionResult{Result: types.OK(), Session: s}
}

// GetSession fetches a session by ID.
func (c *Coordinator) GetSession(ctx context.Context, id string) SessionResult {
	s, err := c.store.Get(ctx, id)
	if err != nil {
		return SessionResult{Result: types.FailErr(err)}
	}
	return SessionResult{Result: types.OK(), Session: s}
}

// DeleteSession removes a session and its persisted state.
func (c *Coordinator) DeleteSession(ctx context.Context, id string) types.Result {
	if err := c.store.Delete(ctx, id); err != nil {
		return types.FailErr(err)
	}
	logging.Coordinator("Deleted session %s", id)
	return types.OK()
}

// ListSessions returns every known session.
func (c *Coordinator) ListSessions(ctx context.Context) SessionListResult {
	ids, err := c.store.List(ctx)
	if err != nil {
		return SessionListResult{Result: types.FailErr(err)}
	}

	sessions := make([]*session.Session, 0, len(ids))
	for _, id := range ids {
		s, err := c.store.Get(ctx, id)
		if err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	return SessionListResult{Result: types.OK(), Sessions: sessions}
}

// GetKnowledgeBase returns the session's clauses joined by newlines.
func (c *Coordinator) GetKnowledgeBase(ctx context.Context, sessionID string) TextResult {
	s, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return TextResult{Result: types.FailErr(err)}
	}
	return TextResult{Result: types.OK(), Text: s.KnowledgeBase()}
}

// GetLexiconSummary returns the predicate/arity summary for the session.
func (c *Coordinator) GetLexiconSummary(ctx context.Context, sessionID string) TextResult {
	s, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return TextResult{Result: types.FailErr(err)}
	}
	return TextResult{Result: types.OK(), Text: s.LexiconSummary()}
}

// GetActiveStrategyID returns the session's strategy override, or the system
// default when the session has none.
func (c *Coordinator) GetActiveStrategyID(ctx context.Context, sessionID string) TextResult {
	s, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return TextResult{Result: types.FailErr(err)}
	}
	if s.ActiveStrategyID != "" {
		return TextResult{Result: types.OK(), Text: s.ActiveStrategyID}
	}
	return TextResult{Result: types.OK(), Text: c.defaultStrategy}
}

// SetActiveStrategyForSession records a per-session strategy override after
// checking both the session and the strategy exist.
func (c *Coordinator) SetActiveStrategyForSession(ctx context.Context, sessionID, strategyID string) types.Result {
	if !c.strategies.HasBase(strategyID) {
		return types.Fail(types.NewError(types.ErrStrategyNotFound, "strategy %q not found", strategyID))
	}
	if err := c.store.SetActiveStrategy(ctx, sessionID, strategyID); err != nil {
		return types.FailErr(err)
	}
	logging.Coordinator("Session %s strategy set to %s", sessionID, strategyID)
	return types.OK()
}

// ListStrategies describes all registered strategies.
func (c *Coordinator) ListStrategies() []strategy.Info {
	return c.strategies.List()
}

// GetStrategy resolves one strategy by ID or hash.
func (c *Coordinator) GetStrategy(idOrHash string) (*strategy.Strategy, types.Result) {
	s, err := c.strategies.Get(idOrHash)
	if err != nil {
		return nil, types.FailErr(err)
	}
	return s, types.OK()
}

// GetPrompts returns all registered prompt templates.
func (c *Coordinator) GetPrompts() PromptsResult {
	return PromptsResult{Result: types.OK(), Templates: c.prompts.All()}
}

// DebugFormatPrompt renders a template with the given variables, returning
// both the raw and formatted text.
func (c *Coordinator) DebugFormatPrompt(name string, vars map[string]string) PromptsResult {
	preview, err := c.prompts.FormatPreview(name, vars)
	if err != nil {
		return PromptsResult{Result: types.FailErr(err)}
	}
	return PromptsResult{Result: types.OK(), Preview: preview}
}
