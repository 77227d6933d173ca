package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/types"
)

// MemoryStore keeps sessions in a map. Suitable for tests and ephemeral use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Create(_ context.Context, id string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[id]; ok {
		return copySession(existing), nil
	}

	s := &Session{ID: id, CreatedAt: time.Now().UTC(), Clauses: []string{}}
	m.sessions[id] = s
	logging.SessionDebug("Created session %s", id)
	return copySession(s), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, types.NewError(types.ErrSessionNotFound, "session %q not found", id)
	}
	return copySession(s), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return types.NewError(types.ErrSessionNotFound, "session %q not found", id)
	}
	delete(m.sessions, id)
	logging.SessionDebug("Deleted session %s", id)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) AddClauses(_ context.Context, id string, clauses []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return types.NewError(types.ErrSessionNotFound, "session %q not found", id)
	}
	s.Clauses = append(s.Clauses, clauses...)
	logging.SessionDebug("Session %s: appended %d clauses (total %d)", id, len(clauses), len(s.Clauses))
	return nil
}

func (m *MemoryStore) SetActiveStrategy(_ context.Context, id, strategyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return types.NewError(types.ErrSessionNotFound, "session %q not found", id)
	}
	s.ActiveStrategyID = strategyID
	return nil
}

func copySession(s *Session) *Session {
	out := *s
	out.Clauses = make([]string, len(s.Clauses))
	copy(out.Clauses, s.Clauses)
	return &out
}
