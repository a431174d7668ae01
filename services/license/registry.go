package license

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownType   = errors.New("unknown license type")
	ErrDuplicateType = errors.New("license type already registered")
)

// Factory returns a new, unconfigured license type instance.
type Factory func() Type

// Registry maps license type ids to factories. Types register at process
// start.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

func (r *Registry) Register(id string, f Factory) error {
	if id == "" || f == nil {
		return fmt.Errorf("register license type %q: empty id or factory", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, id)
	}
	r.factories[id] = f
	return nil
}

// IDs returns the registered type ids in lexical order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CreateInstance builds the type registered under id, configured with its
// defaults overlaid by cfg.
func (r *Registry) CreateInstance(id string, cfg Configuration) (Type, error) {
	r.mu.RLock()
	f, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, id)
	}

	t := f()
	t.SetConfiguration(t.DefaultConfiguration().Merge(cfg))
	return t, nil
}
