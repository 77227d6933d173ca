package ontology

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/automenta/mcr/internal/logging"
)

// ontologyExts are the file extensions loaded as ontology text.
var ontologyExts = map[string]bool{".pl": true, ".prolog": true, ".mg": true}

// Directory serves every recognised file in a directory as one ontology,
// named after the file without its extension. Start watches the directory
// and reloads on change, so long-running services pick up edits without a
// restart.
type Directory struct {
	mu      sync.RWMutex
	dir     string
	texts   map[string]string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewDirectory loads the directory once. A missing directory yields an empty
// registry rather than an error; ontologies are optional.
func NewDirectory(dir string) (*Directory, error) {
	d := &Directory{
		dir:    dir,
		texts:  make(map[string]string),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if err := d.reload(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) List() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sortedNames(d.texts)
}

func (d *Directory) Get(name string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text, ok := d.texts[name]
	if !ok {
		return "", fmt.Errorf("ontology %q not found", name)
	}
	return text, nil
}

func (d *Directory) Snapshot() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return renderSnapshot(d.texts)
}

// reload re-reads every ontology file.
func (d *Directory) reload() error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			d.mu.Lock()
			d.texts = make(map[string]string)
			d.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read ontology directory: %w", err)
	}

	texts := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !ontologyExts[ext] {
			continue
		}
		data, err := os.ReadFile(filepath.Join(d.dir, entry.Name()))
		if err != nil {
			logging.Get(logging.CategoryOntology).Warn("Skipping unreadable ontology %s: %v", entry.Name(), err)
			continue
		}
		texts[strings.TrimSuffix(entry.Name(), ext)] = string(data)
	}

	d.mu.Lock()
	d.texts = texts
	d.mu.Unlock()
	logging.Get(logging.CategoryOntology).Debug("Loaded %d ontologies from %s", len(texts), d.dir)
	return nil
}

// Start begins watching the directory for changes. Non-blocking.
func (d *Directory) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.watcher = watcher
	d.running = true
	d.mu.Unlock()

	if err := watcher.Add(d.dir); err != nil {
		logging.Get(logging.CategoryOntology).Warn("Ontology watch failed (dir may not exist): %v", err)
	}

	go d.run(ctx)
	return nil
}

func (d *Directory) run(ctx context.Context) {
	defer close(d.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if !ontologyExts[filepath.Ext(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logging.Get(logging.CategoryOntology).Debug("Ontology change: %s %s", event.Op, event.Name)
			if err := d.reload(); err != nil {
				logging.Get(logging.CategoryOntology).Error("Ontology reload failed: %v", err)
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryOntology).Error("Ontology watcher error: %v", err)
		}
	}
}

// Stop halts the watcher, if running, and waits for the event loop to exit.
func (d *Directory) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	close(d.stopCh)
	<-d.doneCh
	if err := d.watcher.Close(); err != nil {
		logging.Get(logging.CategoryOntology).Error("Error closing ontology watcher: %v", err)
	}
}
