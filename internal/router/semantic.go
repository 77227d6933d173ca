package router

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/automenta/mcr/internal/embedding"
	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/perf"
)

// Archetype is a canonical input shape the semantic router classifies
// against. The ID doubles as the performance DB input_type.
type Archetype struct {
	ID          string
	Description string
}

// DefaultArchetypes covers the input shapes the evaluation harness labels.
func DefaultArchetypes() []Archetype {
	return []Archetype{
		{ID: "fact_statement", Description: "A plain statement of fact about an entity, such as 'The sky is blue' or 'Socrates is a man'."},
		{ID: "rule_definition", Description: "A general rule or implication, such as 'All men are mortal' or 'Every bird can fly'."},
		{ID: "definition_request", Description: "A question asking for the definition or meaning of a term, such as 'What is water?'."},
		{ID: "relationship_query", Description: "A question about how two entities relate, such as 'Who likes cheese?' or 'What does Mary own?'."},
		{ID: "attribute_query", Description: "A question about a property of an entity, such as 'What color is the sky?'."},
		{ID: "existence_check", Description: "A yes/no question about whether a fact holds, such as 'Is Socrates mortal?'."},
		{ID: "list_request", Description: "A request to enumerate all entities satisfying a condition, such as 'List all mortals.'."},
		{ID: "explanation_request", Description: "A request to explain why something holds, such as 'Why is Socrates mortal?'."},
		{ID: "compound_statement", Description: "Several facts or rules stated in one sentence, such as 'Socrates is a man and all men are mortal.'."},
	}
}

// Semantic routes by classifying the input against archetype embeddings, then
// scoring recorded results for the matched archetype.
type Semantic struct {
	engine     embedding.Engine
	db         *perf.DB
	archetypes []Archetype

	warmOnce sync.Once
	warmErr  error
	vectors  [][]float32
}

// NewSemantic creates a semantic router. Archetype embeddings are computed
// lazily on first route and cached for the process lifetime.
func NewSemantic(engine embedding.Engine, db *perf.DB, archetypes []Archetype) *Semantic {
	if len(archetypes) == 0 {
		archetypes = DefaultArchetypes()
	}
	return &Semantic{engine: engine, db: db, archetypes: archetypes}
}

// warmup embeds every archetype description once, in parallel.
func (s *Semantic) warmup(ctx context.Context) error {
	s.warmOnce.Do(func() {
		timer := logging.StartTimer(logging.CategoryRouter, "archetype_warmup")
		defer timer.Stop()

		vectors := make([][]float32, len(s.archetypes))
		g, gctx := errgroup.WithContext(ctx)
		for i, arch := range s.archetypes {
			g.Go(func() error {
				v, err := s.engine.Embed(gctx, arch.Description)
				if err != nil {
					return err
				}
				vectors[i] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			s.warmErr = err
			return
		}
		s.vectors = vectors
	})
	return s.warmErr
}

// Classify returns the archetype ID closest to the text, or "" if the
// embedding service is unavailable.
func (s *Semantic) Classify(ctx context.Context, text string) string {
	if err := s.warmup(ctx); err != nil {
		logging.Get(logging.CategoryRouter).Warn("Archetype warmup failed: %v", err)
		return ""
	}

	input, err := s.engine.Embed(ctx, text)
	if err != nil {
		logging.Get(logging.CategoryRouter).Warn("Input embedding failed: %v", err)
		return ""
	}

	best := ""
	bestSim := -2.0
	for i, arch := range s.archetypes {
		sim := embedding.CosineSimilarity(input, s.vectors[i])
		if sim > bestSim {
			best = arch.ID
			bestSim = sim
		}
	}
	logging.RouterDebug("Classified input as %s (similarity %.3f)", best, bestSim)
	return best
}

func (s *Semantic) Route(ctx context.Context, text, modelID string) string {
	inputType := s.Classify(ctx, text)
	if inputType == "" {
		// Degrade to the keyword heuristic when embeddings are unavailable.
		inputType = ClassifyInput(text)
	}
	return routeByInputType(ctx, s.db, inputType, modelID)
}
