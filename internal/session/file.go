package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/types"
)

// FileStore persists one JSON document per session under a directory.
// Mutations are eager: the document is rewritten (tmp + rename) before the
// call returns. Reads prefer the in-memory cache and fall back to disk.
type FileStore struct {
	mu    sync.Mutex
	dir   string
	cache map[string]*Session
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("session directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &FileStore{dir: dir, cache: make(map[string]*Session)}, nil
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *FileStore) Create(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if strings.ContainsAny(id, `/\`) {
		return nil, types.NewError(types.ErrInvalidInput, "session id %q contains path separators", id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, err := f.loadLocked(id); err == nil {
		return copySession(existing), nil
	}

	s := &Session{ID: id, CreatedAt: time.Now().UTC(), Clauses: []string{}}
	if err := f.writeLocked(s); err != nil {
		return nil, err
	}
	f.cache[id] = s
	logging.SessionDebug("Created session file %s", f.path(id))
	return copySession(s), nil
}

func (f *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.loadLocked(id)
	if err != nil {
		return nil, err
	}
	return copySession(s), nil
}

func (f *FileStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.loadLocked(id); err != nil {
		return err
	}
	delete(f.cache, id)
	if err := os.Remove(f.path(id)); err != nil && !os.IsNotExist(err) {
		return types.NewErrorWithDetails(types.ErrSessionAddFactsFailed, err.Error(),
			"cannot delete session %q", id)
	}
	logging.SessionDebug("Deleted session file %s", f.path(id))
	return nil
}

func (f *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *FileStore) AddClauses(ctx context.Context, id string, clauses []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.loadLocked(id)
	if err != nil {
		return err
	}

	next := copySession(s)
	next.Clauses = append(next.Clauses, clauses...)
	if err := f.writeLocked(next); err != nil {
		return err
	}
	f.cache[id] = next
	logging.SessionDebug("Session %s: appended %d clauses (total %d)", id, len(clauses), len(next.Clauses))
	return nil
}

func (f *FileStore) SetActiveStrategy(ctx context.Context, id, strategyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.loadLocked(id)
	if err != nil {
		return err
	}

	next := copySession(s)
	next.ActiveStrategyID = strategyID
	if err := f.writeLocked(next); err != nil {
		return err
	}
	f.cache[id] = next
	return nil
}

func (f *FileStore) loadLocked(id string) (*Session, error) {
	if s, ok := f.cache[id]; ok {
		return s, nil
	}

	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewError(types.ErrSessionNotFound, "session %q not found", id)
		}
		return nil, types.NewErrorWithDetails(types.ErrSessionNotFound, err.Error(),
			"cannot read session %q", id)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, types.NewErrorWithDetails(types.ErrSessionNotFound, err.Error(),
			"session file for %q is corrupt", id)
	}
	if s.Clauses == nil {
		s.Clauses = []string{}
	}
	f.cache[id] = &s
	return &s, nil
}

// writeLocked persists the document durably: write to a temp file in the same
// directory, then rename over the target.
func (f *FileStore) writeLocked(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return types.NewErrorWithDetails(types.ErrSessionAddFactsFailed, err.Error(),
			"cannot encode session %q", s.ID)
	}

	tmp, err := os.CreateTemp(f.dir, s.ID+".*.tmp")
	if err != nil {
		return types.NewErrorWithDetails(types.ErrSessionAddFactsFailed, err.Error(),
			"cannot persist session %q", s.ID)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return types.NewErrorWithDetails(types.ErrSessionAddFactsFailed, err.Error(),
			"cannot persist session %q", s.ID)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return types.NewErrorWithDetails(types.ErrSessionAddFactsFailed, err.Error(),
			"cannot persist session %q", s.ID)
	}
	if err := os.Rename(tmpName, f.path(s.ID)); err != nil {
		os.Remove(tmpName)
		return types.NewErrorWithDetails(types.ErrSessionAddFactsFailed, err.Error(),
			"cannot persist session %q", s.ID)
	}
	return nil
}
