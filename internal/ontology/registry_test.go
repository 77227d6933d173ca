package ontology

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestStaticSnapshotIsLabelledAndSorted(t *testing.T) {
	r := NewStatic(map[string]string{
		"zoo":    "animal(lion).",
		"colors": "is_color(sky, blue).",
	})

	snapshot := r.Snapshot()
	assert.Contains(t, snapshot, "% --- ontology: colors ---")
	assert.Contains(t, snapshot, "% --- ontology: zoo ---")
	assert.Less(t,
		strings.Index(snapshot, "colors"),
		strings.Index(snapshot, "zoo"),
		"sections must appear in name order")
	assert.Equal(t, []string{"colors", "zoo"}, r.List())
}

func TestStaticGet(t *testing.T) {
	r := NewStatic(map[string]string{"colors": "is_color(sky, blue)."})

	text, err := r.Get("colors")
	require.NoError(t, err)
	assert.Equal(t, "is_color(sky, blue).", text)

	_, err = r.Get("missing")
	assert.Error(t, err)
}

func TestStaticEmptySnapshot(t *testing.T) {
	r := NewStatic(nil)
	assert.Equal(t, "", r.Snapshot())
}

func TestDirectoryLoadsRecognisedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "colors.pl"), []byte("is_color(sky, blue).\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	d, err := NewDirectory(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"colors"}, d.List())
	text, err := d.Get("colors")
	require.NoError(t, err)
	assert.Contains(t, text, "is_color(sky, blue).")
}

func TestDirectoryMissingDirIsEmpty(t *testing.T) {
	d, err := NewDirectory(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, d.List())
	assert.Equal(t, "", d.Snapshot())
}

func TestDirectoryHotReload(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	d, err := NewDirectory(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, d.Start(ctx))
	defer d.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "zoo.pl"), []byte("animal(lion).\n"), 0644))

	require.Eventually(t, func() bool {
		_, err := d.Get("zoo")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}
