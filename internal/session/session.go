// Package session holds per-session clause state behind a Store interface,
// with an in-memory implementation and a file-backed one (one JSON document
// per session, rewritten atomically on each mutation).
package session

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Session is one reasoning session: an ordered clause set plus an optional
// per-session strategy override.
type Session struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"createdAt"`
	Clauses          []string  `json:"clauses"`
	ActiveStrategyID string    `json:"activeStrategyId,omitempty"`
}

// KnowledgeBase returns all clauses joined by newlines.
func (s *Session) KnowledgeBase() string {
	return strings.Join(s.Clauses, "\n")
}

var headRe = regexp.MustCompile(`^([a-z_][a-zA-Z0-9_]*)\s*(\()?`)

// LexiconSummary lists the distinct predicate/arity pairs appearing as clause
// heads, one per line, sorted. It is rebuilt from the clauses on each call so
// it can never go stale.
func (s *Session) LexiconSummary() string {
	seen := make(map[string]bool)
	for _, clause := range s.Clauses {
		head := clause
		if idx := strings.Index(clause, ":-"); idx >= 0 {
			head = clause[:idx]
		}
		head = strings.TrimSpace(head)

		m := headRe.FindStringSubmatch(head)
		if m == nil {
			continue
		}
		arity := 0
		if m[2] == "(" {
			arity = headArity(head[len(m[1]):])
		}
		seen[m[1]+"/"+strconv.Itoa(arity)] = true
	}

	entries := make([]string, 0, len(seen))
	for entry := range seen {
		entries = append(entries, entry)
	}
	sort.Strings(entries)
	return strings.Join(entries, "\n")
}

// headArity counts top-level comma-separated arguments in "(...)" text.
func headArity(args string) int {
	depth := 0
	count := 0
	sawArg := false
	inString := false
	for i := 0; i < len(args); i++ {
		c := args[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			sawArg = true
		case '(', '[':
			depth++
			if depth > 1 {
				sawArg = true
			}
		case ')', ']':
			depth--
			if depth == 0 {
				if sawArg {
					count++
				}
				return count
			}
		case ',':
			if depth == 1 {
				count++
			}
		case ' ', '\t':
		default:
			sawArg = true
		}
	}
	return count
}

// Store is the session persistence boundary. Implementations that do I/O
// take a context; the in-memory variant ignores it.
type Store interface {
	// Create makes a new session. An empty id means "generate one".
	// Creating an existing id returns the existing session unchanged.
	Create(ctx context.Context, id string) (*Session, error)

	// Get returns a copy of the session, or SESSION_NOT_FOUND.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes the session and its persisted state.
	Delete(ctx context.Context, id string) error

	// List returns all known session IDs, sorted.
	List(ctx context.Context) ([]string, error)

	// AddClauses appends the batch atomically: either all clauses are
	// visible to subsequent reads, or none are.
	AddClauses(ctx context.Context, id string, clauses []string) error

	// SetActiveStrategy records a per-session strategy override.
	SetActiveStrategy(ctx context.Context, id, strategyID string) error
}
