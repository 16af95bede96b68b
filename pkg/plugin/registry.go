package plugin

import (
	"log/slog"
	"sync"

	"github.com/hai3/sdk/pkg/logging"
)

// Registry holds globally registered plugins, keyed by protocol kind.
// Lists preserve insertion order. It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	byKind map[Kind][]Plugin
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used to report destroy failures.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a new empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byKind: make(map[Kind][]Plugin),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add appends p to the end of kind's list. No uniqueness check is
// performed: adding the same instance twice creates two independent
// registrations.
func (r *Registry) Add(kind Kind, p Plugin) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKind[kind] = append(r.byKind[kind], p)
}

// Remove destroys and removes the first registration under kind whose
// ID matches id. Removing an unknown id is a silent no-op.
func (r *Registry) Remove(kind Kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byKind[kind]
	for i, p := range list {
		if p.ID() == id {
			destroy(p, r.logger)
			r.byKind[kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Clear destroys and removes every registration under kind, in order.
func (r *Registry) Clear(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked(kind)
}

func (r *Registry) clearLocked(kind Kind) {
	for _, p := range r.byKind[kind] {
		destroy(p, r.logger)
	}
	delete(r.byKind, kind)
}

// Has reports whether any registration under kind has the given ID.
func (r *Registry) Has(kind Kind, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.byKind[kind] {
		if p.ID() == id {
			return true
		}
	}
	return false
}

// All returns kind's registrations in order. The slice is a copy;
// mutating it does not affect the registry.
func (r *Registry) All(kind Kind) []Plugin {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byKind[kind]
	out := make([]Plugin, len(list))
	copy(out, list)
	return out
}

// Reset clears every kind's list, destroying all plugins. Idempotent
// and safe to call with nothing registered.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for kind := range r.byKind {
		r.clearLocked(kind)
	}
}
