package perf

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenWritable(filepath.Join(t.TempDir(), "perf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(context.Background()))
	return db
}

func TestResultsForFiltersByModelAndInputType(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.InsertResult(ctx, Row{
		StrategyHash: "hash-a", LLMModelID: "gpt-test", InputType: "assert",
		Metrics: map[string]interface{}{"exactMatchProlog": true}, LatencyMS: 120,
		Cost: map[string]interface{}{"tokenCount": 200},
	}))
	require.NoError(t, db.InsertResult(ctx, Row{
		StrategyHash: "hash-b", LLMModelID: "", InputType: "assert",
		Metrics: map[string]interface{}{"prologStructureMatch": true}, LatencyMS: 80,
	}))
	require.NoError(t, db.InsertResult(ctx, Row{
		StrategyHash: "hash-c", LLMModelID: "other-model", InputType: "assert",
		Metrics: map[string]interface{}{}, LatencyMS: 10,
	}))
	require.NoError(t, db.InsertResult(ctx, Row{
		StrategyHash: "hash-d", LLMModelID: "gpt-test", InputType: "query",
		Metrics: map[string]interface{}{}, LatencyMS: 10,
	}))

	rows, err := db.ResultsFor(ctx, "gpt-test", "assert")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	hashes := []string{rows[0].StrategyHash, rows[1].StrategyHash}
	assert.ElementsMatch(t, []string{"hash-a", "hash-b"}, hashes)
}

func TestMetricTrueShapes(t *testing.T) {
	r := Row{Metrics: map[string]interface{}{
		"asBool":   true,
		"asNumber": float64(1),
		"zero":     float64(0),
		"off":      false,
	}}
	assert.True(t, r.MetricTrue("asBool"))
	assert.True(t, r.MetricTrue("asNumber"))
	assert.False(t, r.MetricTrue("zero"))
	assert.False(t, r.MetricTrue("off"))
	assert.False(t, r.MetricTrue("absent"))
}

func TestTokenCountSpellings(t *testing.T) {
	assert.Equal(t, int64(42), Row{Cost: map[string]interface{}{"tokenCount": float64(42)}}.TokenCount())
	assert.Equal(t, int64(7), Row{Cost: map[string]interface{}{"total_tokens": float64(7)}}.TokenCount())
	assert.Equal(t, int64(0), Row{}.TokenCount())
}
