package game

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrDuplicateGame = errors.New("game already registered")
	ErrGameNotFound  = errors.New("game not found")
)

// Registry is the catalog of game definitions. It is populated at startup
// before the service accepts rooms; Unregister exists for tests.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Definition
}

// NewRegistry creates an empty game registry.
func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Definition)}
}

// Register adds a game definition to the catalog.
func (r *Registry) Register(def Definition) error {
	id := def.Info().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.games[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateGame, id)
	}
	r.games[id] = def
	return nil
}

// Unregister removes a definition by ID. Removing an unknown ID is a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, id)
}

// Get returns the definition for the given game ID.
func (r *Registry) Get(id string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return def, nil
}

// Available lists public metadata for every registered game, sorted by ID.
func (r *Registry) Available() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.games))
	for _, def := range r.games {
		out = append(out, def.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
