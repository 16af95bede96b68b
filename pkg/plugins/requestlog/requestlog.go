// Package requestlog provides a cross-cutting plugin that records
// request, response and connect activity for inspection.
//
// Entries are kept in a bounded in-memory ring; when full, the oldest
// entries are dropped. The plugin implements the REST request/response
// hooks and the SSE connect/close hooks, so one instance registered
// with both kinds records interleaved activity in call order.
package requestlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hai3/sdk/pkg/rest"
	"github.com/hai3/sdk/pkg/sse"
)

// PluginID is the identifier Plugin registers under.
const PluginID = "requestlog"

// Protocol constants for log entries.
const (
	ProtocolREST = "rest"
	ProtocolSSE  = "sse"
)

// Operation constants for log entries.
const (
	OpRequest    = "request"
	OpResponse   = "response"
	OpConnect    = "connect"
	OpDisconnect = "disconnect"
)

// Entry captures one observed operation.
type Entry struct {
	// ID is a unique identifier for the log entry.
	ID string `json:"id"`

	// Timestamp is when the operation was observed.
	Timestamp time.Time `json:"timestamp"`

	// Protocol identifies the protocol variant (rest, sse).
	Protocol string `json:"protocol"`

	// Op identifies the operation (request, response, connect,
	// disconnect).
	Op string `json:"op"`

	// Method is the HTTP method, empty for SSE entries.
	Method string `json:"method,omitempty"`

	// URL is the request or subscribe target.
	URL string `json:"url,omitempty"`

	// Status is the response status code, response entries only.
	Status int `json:"status,omitempty"`
}

// DefaultCapacity is the ring size used when Options.Capacity is zero.
const DefaultCapacity = 256

// Options configures a Plugin.
type Options struct {
	// Capacity bounds the number of retained entries.
	Capacity int
}

// Plugin records activity across both protocol chains.
type Plugin struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

// New creates a Plugin.
func New(opts Options) *Plugin {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Plugin{capacity: capacity}
}

// ID implements plugin.Plugin.
func (p *Plugin) ID() string { return PluginID }

func (p *Plugin) log(e Entry) {
	e.ID = uuid.NewString()
	e.Timestamp = time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	if len(p.entries) > p.capacity {
		p.entries = p.entries[len(p.entries)-p.capacity:]
	}
}

// OnRequest implements rest.RequestHook.
func (p *Plugin) OnRequest(_ context.Context, rc rest.RequestContext) (rest.RequestOutcome, error) {
	p.log(Entry{Protocol: ProtocolREST, Op: OpRequest, Method: rc.Method, URL: rc.URL})
	return rest.ContinueWith(rc), nil
}

// OnResponse implements rest.ResponseHook.
func (p *Plugin) OnResponse(_ context.Context, resp *rest.Response) (*rest.Response, error) {
	p.log(Entry{Protocol: ProtocolREST, Op: OpResponse, Status: resp.Status})
	return resp, nil
}

// OnConnect implements sse.ConnectHook.
func (p *Plugin) OnConnect(_ context.Context, cc sse.ConnectContext) (sse.ConnectOutcome, error) {
	p.log(Entry{Protocol: ProtocolSSE, Op: OpConnect, URL: cc.URL})
	return sse.ContinueWith(cc), nil
}

// OnClose implements sse.CloseHook.
func (p *Plugin) OnClose(_ sse.Stream) {
	p.log(Entry{Protocol: ProtocolSSE, Op: OpDisconnect})
}

// Entries returns the retained entries, oldest first. The slice is a
// copy.
func (p *Plugin) Entries() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// CountBy returns the number of entries for a protocol and operation.
func (p *Plugin) CountBy(protocol, op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.entries {
		if e.Protocol == protocol && e.Op == op {
			n++
		}
	}
	return n
}

// Clear drops all retained entries.
func (p *Plugin) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
}

// Destroy implements plugin.Destroyer.
func (p *Plugin) Destroy() error {
	p.Clear()
	return nil
}
