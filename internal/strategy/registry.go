package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/automenta/mcr/internal/logging"
	"github.com/automenta/mcr/internal/types"
)

// Registry holds immutable strategies, addressable by ID and by content
// hash. Built-ins load at construction; all lookups afterwards are
// read-mostly.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]*Strategy
	byHash map[string]*Strategy
}

// NewRegistry returns a registry preloaded with the built-in strategies.
func NewRegistry() *Registry {
	r := &Registry{
		byID:   make(map[string]*Strategy),
		byHash: make(map[string]*Strategy),
	}
	for _, s := range builtinStrategies() {
		if err := r.Register(s); err != nil {
			panic(fmt.Sprintf("invalid builtin strategy %s: %v", s.ID, err))
		}
	}
	return r
}

// Register adds a strategy. Re-registering an existing ID is rejected;
// strategies are immutable once shared.
func (r *Registry) Register(s *Strategy) error {
	if err := s.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[s.ID]; exists {
		return fmt.Errorf("strategy %s already registered", s.ID)
	}
	r.byID[s.ID] = s
	r.byHash[s.Hash()] = s
	logging.StrategyDebug("Registered strategy %s (%s, hash %.12s)", s.ID, s.Operation, s.Hash())
	return nil
}

// Get resolves a strategy by exact ID or by content hash.
func (r *Registry) Get(idOrHash string) (*Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.byID[idOrHash]; ok {
		return s, nil
	}
	if s, ok := r.byHash[idOrHash]; ok {
		return s, nil
	}
	return nil, types.NewError(types.ErrStrategyNotFound, "strategy %q not found", idOrHash)
}

// Resolve finds the strategy for a base ID (or full ID, or hash) and
// operation: first "{base}-{op}", then the bare ID, then the hash — the
// latter two only when their operation matches.
func (r *Registry) Resolve(base string, op Operation) (*Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.byID[base+"-"+string(op)]; ok && s.Operation == op {
		return s, nil
	}
	if s, ok := r.byID[base]; ok && s.Operation == op {
		return s, nil
	}
	if s, ok := r.byHash[base]; ok && s.Operation == op {
		return s, nil
	}
	return nil, types.NewError(types.ErrStrategyNotFound,
		"no %s strategy for %q", op, base)
}

// HasBase reports whether the base ID resolves for either operation.
func (r *Registry) HasBase(base string) bool {
	if _, err := r.Resolve(base, OpAssert); err == nil {
		return true
	}
	if _, err := r.Resolve(base, OpQuery); err == nil {
		return true
	}
	return false
}

// List describes all registered strategies, sorted by ID.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.byID))
	for _, s := range r.byID {
		infos = append(infos, Info{
			ID:        s.ID,
			Name:      s.Name,
			Hash:      s.Hash(),
			Operation: s.Operation,
			NodeCount: len(s.Nodes),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
