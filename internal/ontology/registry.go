// Package ontology supplies globally visible clause text to the reasoning
// pipeline. The core only ever reads a snapshot; ontology CRUD lives outside.
package ontology

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is the read-only view the pipeline consumes.
type Registry interface {
	// List returns the ontology names, sorted.
	List() []string

	// Get returns the clause text of one ontology.
	Get(name string) (string, error)

	// Snapshot returns all ontologies concatenated, each section introduced
	// by a labelled comment line. The result is stable for a given content.
	Snapshot() string
}

// Static is a fixed in-memory registry.
type Static struct {
	mu        sync.RWMutex
	ontologies map[string]string
}

// NewStatic creates a registry over the given name -> clause text map.
func NewStatic(ontologies map[string]string) *Static {
	m := make(map[string]string, len(ontologies))
	for name, text := range ontologies {
		m[name] = text
	}
	return &Static{ontologies: m}
}

func (s *Static) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedNames(s.ontologies)
}

func (s *Static) Get(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.ontologies[name]
	if !ok {
		return "", fmt.Errorf("ontology %q not found", name)
	}
	return text, nil
}

func (s *Static) Snapshot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return renderSnapshot(s.ontologies)
}

// Set adds or replaces an ontology. Used by embedding applications; the
// pipeline itself never writes.
func (s *Static) Set(name, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ontologies[name] = text
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func renderSnapshot(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, name := range sortedNames(m) {
		fmt.Fprintf(&sb, "%% --- ontology: %s ---\n", name)
		sb.WriteString(strings.TrimSpace(m[name]))
		sb.WriteString("\n")
	}
	return sb.String()
}
