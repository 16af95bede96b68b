// Package apiregistry provides the process-wide access point for API
// services and globally registered plugins.
//
// Application code registers services and global plugins through a
// Registry (usually the package-level Default), initializes everything
// once with the API configuration, and calls Reset for test isolation
// or hot reload: Reset tears down services and every registered
// plugin, and is safe to call at any time, including before any
// registration occurred.
package apiregistry

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hai3/sdk/pkg/logging"
	"github.com/hai3/sdk/pkg/plugin"
)

// Errors.
var (
	// ErrServiceExists indicates a service with the same name is
	// already registered.
	ErrServiceExists = errors.New("apiregistry: service already registered")

	// ErrAlreadyInitialized indicates Initialize was called twice
	// without an intervening Reset.
	ErrAlreadyInitialized = errors.New("apiregistry: already initialized")
)

// Config is the API configuration handed to every service at
// initialization.
type Config struct {
	// BaseURL is the default API origin services build their
	// transports against.
	BaseURL string

	// Header holds headers services apply to every request.
	Header map[string]string
}

// Service is a registered API service module. Services with resources
// to release additionally implement plugin.Destroyer and are destroyed
// on Reset.
type Service interface {
	// Name returns the service's unique registration name.
	Name() string

	// Init is called once, with the registry configuration, when the
	// registry initializes (or immediately, when the service is
	// registered after initialization).
	Init(cfg Config) error
}

// Registry combines the global plugin registry with service
// registration. Safe for concurrent use.
type Registry struct {
	mu          sync.Mutex
	plugins     *plugin.Registry
	services    []Service
	names       map[string]bool
	cfg         Config
	initialized bool
	logger      *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger: logging.Nop(),
		names:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.plugins = plugin.NewRegistry(plugin.WithLogger(r.logger))
	return r
}

// Plugins returns the global plugin registry.
func (r *Registry) Plugins() *plugin.Registry {
	return r.plugins
}

// Register adds a service. Registering after Initialize runs the
// service's Init immediately with the stored configuration.
func (r *Registry) Register(svc Service) error {
	if svc == nil {
		return errors.New("apiregistry: nil service")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := svc.Name()
	if r.names[name] {
		return fmt.Errorf("%w: %s", ErrServiceExists, name)
	}
	r.names[name] = true
	r.services = append(r.services, svc)

	if r.initialized {
		if err := svc.Init(r.cfg); err != nil {
			// Unwind so a corrected service can re-register under
			// the same name.
			delete(r.names, name)
			r.services = r.services[:len(r.services)-1]
			return fmt.Errorf("apiregistry: init service %s: %w", name, err)
		}
	}
	return nil
}

// Initialize stores the configuration and initializes every registered
// service in registration order. A second call without an intervening
// Reset returns ErrAlreadyInitialized.
func (r *Registry) Initialize(cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return ErrAlreadyInitialized
	}
	r.cfg = cfg
	r.initialized = true

	for _, svc := range r.services {
		if err := svc.Init(cfg); err != nil {
			return fmt.Errorf("apiregistry: init service %s: %w", svc.Name(), err)
		}
	}
	return nil
}

// Reset tears everything down: services first (destroying those that
// implement plugin.Destroyer, in registration order), then every
// globally registered plugin. Idempotent and safe before any
// registration.
func (r *Registry) Reset() {
	r.mu.Lock()
	services := r.services
	r.services = nil
	r.names = make(map[string]bool)
	r.cfg = Config{}
	r.initialized = false
	r.mu.Unlock()

	for _, svc := range services {
		d, ok := svc.(plugin.Destroyer)
		if !ok {
			continue
		}
		if err := d.Destroy(); err != nil {
			r.logger.Warn("service destroy failed", "service", svc.Name(), "error", err)
		}
	}

	r.plugins.Reset()
}

// Default is the process-wide registry.
var Default = New()

// Plugins returns the Default registry's plugin registry.
func Plugins() *plugin.Registry { return Default.Plugins() }

// Register adds a service to the Default registry.
func Register(svc Service) error { return Default.Register(svc) }

// Initialize initializes the Default registry.
func Initialize(cfg Config) error { return Default.Initialize(cfg) }

// Reset tears down the Default registry.
func Reset() { Default.Reset() }
