package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hai3/sdk/pkg/logging"
	"github.com/hai3/sdk/pkg/plugin"
)

// Kind is the protocol kind REST plugins register under.
const Kind = plugin.KindRest

// ErrNoTransport is returned by Execute when no transport is
// configured and no plugin short-circuited the call.
var ErrNoTransport = errors.New("rest: no transport configured")

// Protocol is one REST client instance: an instance plugin store, a
// mock route map, and a transport, driven through the hook chain by
// Execute.
type Protocol struct {
	registry  *plugin.Registry
	plugins   *plugin.Store
	transport Transport
	logger    *slog.Logger

	mocksMu sync.Mutex
	mocks   *MockMap
}

// Option configures a Protocol.
type Option func(*Protocol)

// WithGlobalRegistry attaches the global plugin registry. Plugins
// registered there under Kind run before this instance's own plugins.
func WithGlobalRegistry(r *plugin.Registry) Option {
	return func(p *Protocol) {
		p.registry = r
	}
}

// WithTransport sets the transport invoked after the request chain.
func WithTransport(t Transport) Option {
	return func(p *Protocol) {
		p.transport = t
	}
}

// WithLogger sets the protocol logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Protocol) {
		p.logger = logger
	}
}

// New creates a Protocol. Without options it has no global registry,
// no transport and a no-op logger; every call must then be served by a
// short-circuiting plugin.
func New(opts ...Option) *Protocol {
	p := &Protocol{
		plugins: plugin.NewStore(),
		logger:  logging.Nop(),
		mocks:   NewMockMap(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.plugins.SetLogger(p.logger)
	return p
}

// Plugins returns the instance plugin store.
func (p *Protocol) Plugins() *plugin.Store {
	return p.plugins
}

// PluginsInOrder returns the execution order for before-phase hooks:
// global plugins for the REST kind, in registration order, followed by
// instance plugins, in registration order.
func (p *Protocol) PluginsInOrder() []plugin.Plugin {
	var ordered []plugin.Plugin
	if p.registry != nil {
		ordered = append(ordered, p.registry.All(Kind)...)
	}
	return append(ordered, p.plugins.All()...)
}

// RegisterMockMap merges m into the instance's mock map: key union,
// last-write-wins on collisions. Service modules call this at load
// time to self-register the routes they own.
func (p *Protocol) RegisterMockMap(m *MockMap) {
	p.mocksMu.Lock()
	defer p.mocksMu.Unlock()
	p.mocks.Merge(m)
}

// MockRoutes returns the live merged mock map. It implements
// MockSource for plugins that read the protocol's routes.
func (p *Protocol) MockRoutes() *MockMap {
	p.mocksMu.Lock()
	defer p.mocksMu.Unlock()
	return p.mocks
}

// Execute runs rc through the plugin chain and the transport.
//
// OnRequest hooks run sequentially in PluginsInOrder order; each is
// awaited before the next so later hooks see earlier mutations and a
// short-circuit is detected before the next hook runs. A short-circuit
// response is returned as-is: remaining plugins and the transport are
// skipped. Otherwise the transport executes and OnResponse hooks fold
// the result in reverse order. A hook error fails the call.
func (p *Protocol) Execute(ctx context.Context, rc RequestContext) (*Response, error) {
	ordered := p.PluginsInOrder()

	for _, pl := range ordered {
		if binder, ok := pl.(MockSourceBinder); ok {
			binder.BindMockSource(p)
		}
	}

	for _, pl := range ordered {
		hook, ok := pl.(RequestHook)
		if !ok {
			continue
		}
		outcome, err := hook.OnRequest(ctx, rc)
		if err != nil {
			return nil, fmt.Errorf("rest: onRequest hook %s: %w", pl.ID(), err)
		}
		if resp, stopped := outcome.ShortCircuited(); stopped {
			p.logger.Debug("request short-circuited",
				"plugin", pl.ID(), "method", rc.Method, "url", rc.URL)
			return resp, nil
		}
		rc = outcome.Request()
	}

	if p.transport == nil {
		return nil, ErrNoTransport
	}

	resp, err := p.transport.RoundTrip(ctx, rc)
	if err != nil {
		return nil, err
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		hook, ok := ordered[i].(ResponseHook)
		if !ok {
			continue
		}
		resp, err = hook.OnResponse(ctx, resp)
		if err != nil {
			return nil, fmt.Errorf("rest: onResponse hook %s: %w", ordered[i].ID(), err)
		}
	}

	p.logger.Debug("request executed",
		"method", rc.Method, "url", rc.URL, "status", resp.Status)
	return resp, nil
}
