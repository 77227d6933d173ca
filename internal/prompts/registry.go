// Package prompts holds the named prompt templates used by translation
// strategies, with strict {{var}} placeholder filling.
package prompts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/types"
)

// Template is a (system, user) prompt pair with declared variables.
// Registration rejects templates whose placeholders are not declared, which
// keeps the runtime fill path total: a fill can only fail on a missing value.
type Template struct {
	Name      string
	System    string
	User      string
	Variables []string
}

var placeholderRe = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Placeholders returns the distinct placeholder names in the template,
// sorted for determinism.
func (t Template) Placeholders() []string {
	seen := make(map[string]bool)
	for _, text := range []string{t.System, t.User} {
		for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
			seen[m[1]] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry resolves templates by name. Static templates are loaded at
// construction; dynamic additions go through Register with the same checks.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewRegistry returns a registry preloaded with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]Template)}
	for _, t := range builtinTemplates() {
		if err := r.Register(t); err != nil {
			// Built-in templates are validated by tests; a failure here is a bug.
			panic(fmt.Sprintf("invalid builtin template %s: %v", t.Name, err))
		}
	}
	return r
}

// Register adds a template after checking its placeholder schema.
func (r *Registry) Register(t Template) error {
	if t.Name == "" {
		return fmt.Errorf("template name must not be empty")
	}

	declared := make(map[string]bool, len(t.Variables))
	for _, v := range t.Variables {
		declared[v] = true
	}
	for _, p := range t.Placeholders() {
		if !declared[p] {
			return fmt.Errorf("template %s uses undeclared variable %q", t.Name, p)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name] = t
	logging.Get(logging.CategoryPrompt).Debug("Registered template %s (vars=%v)", t.Name, t.Variables)
	return nil
}

// Get resolves a template by name.
func (r *Registry) Get(name string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	if !ok {
		return Template{}, types.NewError(types.ErrPromptTemplateNotFound, "prompt template %q not found", name)
	}
	return t, nil
}

// Names returns all registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a copy of the registered templates keyed by name.
func (r *Registry) All() map[string]Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Template, len(r.templates))
	for name, t := range r.templates {
		out[name] = t
	}
	return out
}

// Fill renders the template with the given variable values.
// Every placeholder present in the raw template must be supplied; the first
// missing key is named in the error. Unused keys are ignored. Replacement
// values may not smuggle in new placeholders.
func (r *Registry) Fill(name string, vars map[string]string) (system, user string, err error) {
	t, err := r.Get(name)
	if err != nil {
		return "", "", err
	}
	system, err = fill(t.Name, t.System, vars)
	if err != nil {
		return "", "", err
	}
	user, err = fill(t.Name, t.User, vars)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func fill(name, text string, vars map[string]string) (string, error) {
	var missing string
	result := placeholderRe.ReplaceAllStringFunc(text, func(token string) string {
		key := token[2 : len(token)-2]
		value, ok := vars[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return token
		}
		return value
	})
	if missing != "" {
		return "", types.NewError(types.ErrPromptFormattingFailed,
			"template %s: missing value for variable %q", name, missing)
	}
	if placeholderRe.MatchString(result) {
		return "", types.NewError(types.ErrPromptFormattingFailed,
			"template %s: replacement values introduced new placeholders", name)
	}
	return result, nil
}

// FormatPreview renders a template for debugging, returning the raw template
// alongside the formatted text.
func (r *Registry) FormatPreview(name string, vars map[string]string) (map[string]string, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	system, user, err := r.Fill(name, vars)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"template_system":  t.System,
		"template_user":    t.User,
		"formatted_system": system,
		"formatted_user":   user,
		"variables":        strings.Join(t.Variables, ", "),
	}, nil
}
