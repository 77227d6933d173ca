// Package router picks a translation strategy for an input based on recorded
// performance data. Routing is advisory: every failure path returns an empty
// hash and the caller falls back to the system default strategy.
package router

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/perf"
)

// Router maps an input text and model to a strategy hash, or "" when it has
// no opinion.
type Router interface {
	Route(ctx context.Context, text, modelID string) string
}

// None is a router that never has an opinion.
type None struct{}

func (None) Route(context.Context, string, string) string { return "" }

var interrogativeRe = regexp.MustCompile(`(?i)^\s*(what|who|whom|whose|which|where|when|why|how|is|are|was|were|does|do|did|can|could|would|will|has|have|list|tell)\b`)

// ClassifyInput maps input text to "query" or "assert".
func ClassifyInput(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, "?") || interrogativeRe.MatchString(trimmed) {
		return "query"
	}
	return "assert"
}

// aggregate is the per-strategy rollup of performance rows.
type aggregate struct {
	hash         string
	meanScore    float64
	meanLatency  float64
	meanTokens   float64
	successCount int
}

// scoreRow computes the composite score for one evaluation row:
// 100*success + 10*latency + 1*cost, where success weighs exact Prolog and
// answer matches at 1 and structural match at 0.5, latency is 1000/(ms+1),
// and cost is 1000/(tokens+1).
func scoreRow(row perf.Row) (composite float64, success float64) {
	if row.MetricTrue("exactMatchProlog") {
		success += 1
	}
	if row.MetricTrue("exactMatchAnswer") {
		success += 1
	}
	if row.MetricTrue("prologStructureMatch") {
		success += 0.5
	}
	latencyScore := 1000 / (float64(row.LatencyMS) + 1)
	costScore := 1000 / (float64(row.TokenCount()) + 1)
	return 100*success + 10*latencyScore + 1*costScore, success
}

// pickBest aggregates rows per strategy hash and applies the selection rule:
// highest mean score, ties broken by success count, then mean latency, then
// mean token count, then hash for stability. Returns "" for no rows.
func pickBest(rows []perf.Row) string {
	if len(rows) == 0 {
		return ""
	}

	type accum struct {
		scoreSum   float64
		latencySum float64
		tokenSum   float64
		successes  int
		n          int
	}
	byHash := make(map[string]*accum)
	for _, row := range rows {
		a := byHash[row.StrategyHash]
		if a == nil {
			a = &accum{}
			byHash[row.StrategyHash] = a
		}
		composite, success := scoreRow(row)
		a.scoreSum += composite
		a.latencySum += float64(row.LatencyMS)
		a.tokenSum += float64(row.TokenCount())
		if success > 0 {
			a.successes++
		}
		a.n++
	}

	aggs := make([]aggregate, 0, len(byHash))
	for hash, a := range byHash {
		n := float64(a.n)
		aggs = append(aggs, aggregate{
			hash:         hash,
			meanScore:    a.scoreSum / n,
			meanLatency:  a.latencySum / n,
			meanTokens:   a.tokenSum / n,
			successCount: a.successes,
		})
	}

	sort.Slice(aggs, func(i, j int) bool { return betterAggregate(aggs[i], aggs[j]) })
	return aggs[0].hash
}

// betterAggregate orders strategies best-first: mean score, then success
// count, then latency, then cost, then hash for stability.
func betterAggregate(a, b aggregate) bool {
	if a.meanScore != b.meanScore {
		return a.meanScore > b.meanScore
	}
	if a.successCount != b.successCount {
		return a.successCount > b.successCount
	}
	if a.meanLatency != b.meanLatency {
		return a.meanLatency < b.meanLatency
	}
	if a.meanTokens != b.meanTokens {
		return a.meanTokens < b.meanTokens
	}
	return a.hash < b.hash
}

// Keyword routes by classifying the input with the keyword heuristic and
// scoring recorded results for that input type.
type Keyword struct {
	db *perf.DB
}

// NewKeyword creates a keyword router. db may be nil.
func NewKeyword(db *perf.DB) *Keyword {
	return &Keyword{db: db}
}

func (k *Keyword) Route(ctx context.Context, text, modelID string) string {
	return routeByInputType(ctx, k.db, ClassifyInput(text), modelID)
}

// routeByInputType runs the scored selection, swallowing DB errors.
func routeByInputType(ctx context.Context, db *perf.DB, inputType, modelID string) string {
	if db == nil {
		return ""
	}
	rows, err := db.ResultsFor(ctx, modelID, inputType)
	if err != nil {
		logging.Get(logging.CategoryRouter).Warn("Performance lookup failed (%s/%s): %v", modelID, inputType, err)
		return ""
	}
	hash := pickBest(rows)
	logging.RouterDebug("Route %s/%s -> %q (%d rows)", modelID, inputType, hash, len(rows))
	return hash
}
