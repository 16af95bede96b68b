package plugin

import (
	"log/slog"
	"sync"

	"github.com/hai3/sdk/pkg/logging"
)

// Store holds plugins attached to a single protocol instance, in
// insertion order. Unlike the global Registry, removal matches the
// exact plugin instance, not its ID.
type Store struct {
	mu      sync.Mutex
	plugins []Plugin
	logger  *slog.Logger
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{logger: logging.Nop()}
}

// SetLogger sets the logger used to report destroy failures.
func (s *Store) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger != nil {
		s.logger = logger
	}
}

// Add appends p to the store.
func (s *Store) Add(p Plugin) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plugins = append(s.plugins, p)
}

// Remove destroys and removes the first entry that is exactly p.
// Removing a plugin that was never added is a silent no-op.
func (s *Store) Remove(p Plugin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.plugins {
		if existing == p {
			destroy(existing, s.logger)
			s.plugins = append(s.plugins[:i:i], s.plugins[i+1:]...)
			return
		}
	}
}

// All returns the plugins in insertion order. The slice is a copy.
func (s *Store) All() []Plugin {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Plugin, len(s.plugins))
	copy(out, s.plugins)
	return out
}
