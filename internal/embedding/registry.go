package embedding

import (
	"sync"

	"github.com/opencodesearch/codesearch/internal/apperrors"
)

// Factory constructs an Embedder for a given model name.
type Factory func(model string) (Embedder, error)

// Registry maps provider names to factories, so external code can add
// providers (Ollama, a cloud API, a local model server) without this
// package importing their client libraries.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a named factory. Registering the same name twice replaces
// the previous factory.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// New constructs an Embedder by provider name.
func (r *Registry) New(name, model string) (Embedder, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.New(apperrors.CodeConfig, "unknown embedding provider").WithDetail("provider", name)
	}
	return factory(model)
}

// Names returns every registered provider name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
