package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hai3/sdk/internal/matching"
	"github.com/hai3/sdk/internal/routemap"
)

// Handler produces mock response data for a matched route. It receives
// the raw request body (nil for body-less requests) and returns a
// value marshaled to JSON for the synthesized response.
type Handler func(body []byte) (any, error)

// MockMap maps "METHOD /path" route keys to handlers. Iteration order
// is insertion order, which decides precedence among ambiguous
// patterns; merges are key-union with last-write-wins.
type MockMap = routemap.Map[Handler]

// Route is one mock map entry, for building maps with literal
// declaration order.
type Route = routemap.Entry[Handler]

// NewMockMap returns an empty mock map.
func NewMockMap() *MockMap {
	return routemap.New[Handler]()
}

// MockMapOf builds a mock map from routes in the given order.
func MockMapOf(routes ...Route) *MockMap {
	return routemap.Of(routes...)
}

// PluginID is the identifier MockPlugin registers under.
const PluginID = "rest.mock"

// MockPlugin short-circuits requests that match a mock route.
//
// Routes passed at construction (or via SetRoutes) take precedence: a
// plugin with explicit routes never consults the owning protocol's
// registered map. Without explicit routes the plugin reads the live
// protocol map through the MockSource bound during chain execution.
type MockPlugin struct {
	mu     sync.Mutex
	routes *MockMap
	delay  time.Duration
	source MockSource
}

// MockOptions configures a MockPlugin.
type MockOptions struct {
	// Routes is the explicit mock map. Nil means fall back to the
	// owning protocol's registered routes.
	Routes *MockMap

	// Delay is waited before each synthesized response.
	Delay time.Duration
}

// NewMockPlugin creates a MockPlugin.
func NewMockPlugin(opts MockOptions) *MockPlugin {
	return &MockPlugin{
		routes: opts.Routes,
		delay:  opts.Delay,
	}
}

// ID implements plugin.Plugin.
func (p *MockPlugin) ID() string { return PluginID }

// SetRoutes replaces the plugin's explicit routes. Subsequent requests
// match against the new map.
func (p *MockPlugin) SetRoutes(m *MockMap) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes = m
}

// BindMockSource implements MockSourceBinder.
func (p *MockPlugin) BindMockSource(src MockSource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = src
}

// effectiveRoutes resolves the map to match against: explicit routes
// first, then the bound protocol's live map.
func (p *MockPlugin) effectiveRoutes() *MockMap {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.routes != nil {
		return p.routes
	}
	if p.source != nil {
		return p.source.MockRoutes()
	}
	return nil
}

// OnRequest implements RequestHook. A matching route short-circuits
// the chain with the handler's data after the configured delay; no
// match passes the context through unchanged.
func (p *MockPlugin) OnRequest(ctx context.Context, rc RequestContext) (RequestOutcome, error) {
	routes := p.effectiveRoutes()
	if routes == nil {
		return ContinueWith(rc), nil
	}

	method := strings.ToUpper(rc.Method)
	path := rc.Path()

	key, handler, ok := routes.Find(func(key string) bool {
		keyMethod, keyPath, valid := matching.SplitKey(key)
		return valid && keyMethod == method && matching.MatchRoute(keyPath, path)
	})
	if !ok {
		return ContinueWith(rc), nil
	}

	data, err := handler(rc.Body)
	if err != nil {
		return RequestOutcome{}, fmt.Errorf("mock handler for %q: %w", key, err)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return RequestOutcome{}, fmt.Errorf("mock handler for %q: marshal response: %w", key, err)
	}

	if err := p.wait(ctx); err != nil {
		return RequestOutcome{}, err
	}

	return ShortCircuit(&Response{
		Status: 200,
		Header: map[string]string{},
		Data:   payload,
	}), nil
}

// wait sleeps for the configured delay, honoring cancellation.
func (p *MockPlugin) wait(ctx context.Context) error {
	p.mu.Lock()
	delay := p.delay
	p.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
