package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLoggingIsNoOp(t *testing.T) {
	require.NoError(t, Initialize(Options{Enabled: false}))
	defer CloseAll()

	l := Get(CategoryReasoner)
	// Must not panic or create files.
	l.Info("ignored %d", 1)
	l.Error("ignored")
	Coordinator("ignored")
}

func TestEnabledLoggingWritesCategoryFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Enabled: true, Directory: dir, Level: "debug"}))
	defer CloseAll()

	Get(CategorySession).Info("session created: %s", "s1")
	Get(CategorySession).Debug("detail")
	CloseAll()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "_session.log")

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] session created: s1")
	assert.Contains(t, string(data), "[DEBUG] detail")
}

func TestCategoryFilter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{
		Enabled:   true,
		Directory: dir,
		Level:     "info",
		Categories: map[string]bool{
			"router": false,
		},
	}))
	defer CloseAll()

	Get(CategoryRouter).Info("filtered out")
	Get(CategoryLLM).Info("kept")
	CloseAll()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "_llm.log")
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Enabled: true, Directory: dir, Level: "warn"}))
	defer CloseAll()

	l := Get(CategoryStrategy)
	l.Info("dropped")
	l.Warn("kept")
	CloseAll()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "[WARN] kept")
}

func TestTimerStopWithThreshold(t *testing.T) {
	require.NoError(t, Initialize(Options{Enabled: false}))
	timer := StartTimer(CategoryReasoner, "noop")
	elapsed := timer.StopWithThreshold(0)
	assert.True(t, elapsed >= 0)
}
