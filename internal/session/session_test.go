package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automenta/mcr/internal/types"
)

func TestLexiconSummary(t *testing.T) {
	s := &Session{Clauses: []string{
		"is_color(sky, blue).",
		"is_color(grass, green).",
		"man(socrates).",
		"mortal(X) :- man(X).",
		"triple(a, b, c).",
	}}
	assert.Equal(t, "is_color/2\nman/1\nmortal/1\ntriple/3", s.LexiconSummary())
}

func TestLexiconSummaryNestedArgs(t *testing.T) {
	s := &Session{Clauses: []string{
		`holds(f(a, b), "x, y").`,
	}}
	assert.Equal(t, "holds/2", s.LexiconSummary())
}

func TestLexiconSummaryEmpty(t *testing.T) {
	s := &Session{}
	assert.Equal(t, "", s.LexiconSummary())
}

func TestKnowledgeBase(t *testing.T) {
	s := &Session{Clauses: []string{"a(b).", "c(d)."}}
	assert.Equal(t, "a(b).\nc(d).", s.KnowledgeBase())
}

func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	created, err := store.Create(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Empty(t, created.Clauses)

	// Creating an existing id returns it unchanged.
	named, err := store.Create(ctx, "alpha")
	require.NoError(t, err)
	require.NoError(t, store.AddClauses(ctx, "alpha", []string{"a(b)."}))
	again, err := store.Create(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, named.ID, again.ID)
	assert.Equal(t, []string{"a(b)."}, again.Clauses)

	// Batch append preserves order.
	require.NoError(t, store.AddClauses(ctx, "alpha", []string{"c(d).", "e(f)."}))
	got, err := store.Get(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"a(b).", "c(d).", "e(f)."}, got.Clauses)

	// Mutating a returned copy does not leak into the store.
	got.Clauses[0] = "tampered."
	fresh, err := store.Get(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "a(b).", fresh.Clauses[0])

	// Strategy override round-trips.
	require.NoError(t, store.SetActiveStrategy(ctx, "alpha", "SIR-R2-FewShot"))
	fresh, err = store.Get(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "SIR-R2-FewShot", fresh.ActiveStrategyID)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "alpha")
	assert.Contains(t, ids, created.ID)

	require.NoError(t, store.Delete(ctx, "alpha"))
	_, err = store.Get(ctx, "alpha")
	requireCode(t, err, types.ErrSessionNotFound)

	// Operations on missing sessions fail uniformly.
	requireCode(t, store.AddClauses(ctx, "ghost", []string{"x(y)."}), types.ErrSessionNotFound)
	requireCode(t, store.Delete(ctx, "ghost"), types.ErrSessionNotFound)
	requireCode(t, store.SetActiveStrategy(ctx, "ghost", "Direct-S1"), types.ErrSessionNotFound)
}

func requireCode(t *testing.T, err error, code types.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	mcrErr := types.AsMCRError(err)
	assert.Equal(t, code, mcrErr.Code)
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestFileStoreContract(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	runStoreContract(t, store)
}

func TestFileStoreDurability(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Create(ctx, "persisted")
	require.NoError(t, err)
	require.NoError(t, store.AddClauses(ctx, "persisted", []string{"man(socrates)."}))

	// The document must be on disk before AddClauses returns.
	data, err := os.ReadFile(filepath.Join(dir, "persisted.json"))
	require.NoError(t, err)
	var doc Session
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"man(socrates)."}, doc.Clauses)

	// A fresh store over the same directory sees the session.
	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, []string{"man(socrates)."}, got.Clauses)

	ids, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted"}, ids)
}

func TestFileStoreRejectsPathSeparators(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Create(context.Background(), "../escape")
	requireCode(t, err, types.ErrInvalidInput)
}

func TestFileStoreDeleteRemovesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Create(ctx, "doomed")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "doomed"))

	_, statErr := os.Stat(filepath.Join(dir, "doomed.json"))
	assert.True(t, os.IsNotExist(statErr))
}
