package cart

import "sync"

// Registry tracks the live engines so stock-change events can be fanned
// out to every owner's mirror.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]UseCase
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]UseCase)}
}

func (r *Registry) Register(engine UseCase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[engine.OwnerID()] = engine
}

func (r *Registry) Unregister(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, ownerID)
}

func (r *Registry) Each(fn func(UseCase)) {
	r.mu.RLock()
	engines := make([]UseCase, 0, len(r.engines))
	for _, e := range r.engines {
		engines = append(engines, e)
	}
	r.mu.RUnlock()

	for _, e := range engines {
		fn(e)
	}
}
