package sse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hai3/sdk/pkg/logging"
	"github.com/hai3/sdk/pkg/plugin"
)

// Kind is the protocol kind SSE plugins register under.
const Kind = plugin.KindSSE

// Dialer opens the real event stream for a finalized connect context.
// The default is HTTPDialer; tests substitute their own.
type Dialer interface {
	Dial(ctx context.Context, cc ConnectContext) (Stream, error)
}

// Protocol is one SSE client instance: an instance plugin store, a
// mock stream map, and a dialer, driven through the hook chain by
// Connect.
type Protocol struct {
	registry *plugin.Registry
	plugins  *plugin.Store
	dialer   Dialer
	logger   *slog.Logger

	streamsMu sync.Mutex
	streams   *StreamMap
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

// WithDialer sets the dialer invoked after the connect chain.
func WithDialer(d Dialer) Option {
	return func(p *Protocol) {
		p.dialer = d
	}
}

// WithLogger sets the protocol logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Protocol) {
		p.logger = logger
	}
}

// New creates a Protocol. Without options it has no global registry,
// no dialer and a no-op logger; every connect must then be served by a
// short-circuiting plugin.
func New(opts ...Option) *Protocol {
	p := &Protocol{
		plugins: plugin.NewStore(),
		logger:  logging.Nop(),
		streams: NewStreamMap(),
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
// global plugins for the SSE kind, then instance plugins, both in
// registration order.
func (p *Protocol) PluginsInOrder() []plugin.Plugin {
	var ordered []plugin.Plugin
	if p.registry != nil {
		ordered = append(ordered, p.registry.All(Kind)...)
	}
	return append(ordered, p.plugins.All()...)
}

// RegisterMockMap merges m into the instance's stream map: key union,
// last-write-wins on collisions. Service modules call this at load
// time to self-register the streams they own.
func (p *Protocol) RegisterMockMap(m *StreamMap) {
	p.streamsMu.Lock()
	defer p.streamsMu.Unlock()
	p.streams.Merge(m)
}

// MockStreams returns the live merged stream map. It implements
// StreamSource for plugins that read the protocol's streams.
func (p *Protocol) MockStreams() *StreamMap {
	p.streamsMu.Lock()
	defer p.streamsMu.Unlock()
	return p.streams
}

// Connect runs cc through the plugin chain and opens the stream.
//
// OnConnect hooks run sequentially in PluginsInOrder order; a
// short-circuit stream is returned as-is and the dialer is never
// invoked. The opened stream is the terminal value: there is no
// symmetric fold at connect time. OnClose hooks fire in reverse order,
// once, when the returned stream ends or is closed.
func (p *Protocol) Connect(ctx context.Context, cc ConnectContext) (Stream, error) {
	ordered := p.PluginsInOrder()

	for _, pl := range ordered {
		if binder, ok := pl.(StreamSourceBinder); ok {
			binder.BindStreamSource(p)
		}
	}

	for _, pl := range ordered {
		hook, ok := pl.(ConnectHook)
		if !ok {
			continue
		}
		outcome, err := hook.OnConnect(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("sse: onConnect hook %s: %w", pl.ID(), err)
		}
		if s, stopped := outcome.ShortCircuited(); stopped {
			p.logger.Debug("connect short-circuited", "plugin", pl.ID(), "url", cc.URL)
			p.watchClose(s, ordered)
			return s, nil
		}
		cc = outcome.Connect()
	}

	if p.dialer == nil {
		return nil, ErrNoDialer
	}

	s, err := p.dialer.Dial(ctx, cc)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("stream connected", "url", cc.URL)
	p.watchClose(s, ordered)
	return s, nil
}

// watchClose arranges for OnClose hooks to fire in reverse order, at
// most once, when the stream reaches the closed state.
func (p *Protocol) watchClose(s Stream, ordered []plugin.Plugin) {
	hooks := make([]CloseHook, 0, len(ordered))
	for _, pl := range ordered {
		if h, ok := pl.(CloseHook); ok {
			hooks = append(hooks, h)
		}
	}
	if len(hooks) == 0 {
		return
	}

	go func() {
		<-s.Done()
		for i := len(hooks) - 1; i >= 0; i-- {
			hooks[i].OnClose(s)
		}
	}()
}
