package sse

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hai3/sdk/internal/matching"
	"github.com/hai3/sdk/internal/routemap"
)

// StreamHandler produces the scripted event sequence for a matched
// mock stream. Invoked once per connect, with no arguments.
type StreamHandler func() []Event

// StreamMap maps bare "/path" route keys to stream handlers. Iteration
// order is insertion order; merges are key-union with last-write-wins.
type StreamMap = routemap.Map[StreamHandler]

// StreamRoute is one stream map entry.
type StreamRoute = routemap.Entry[StreamHandler]

// NewStreamMap returns an empty stream map.
func NewStreamMap() *StreamMap {
	return routemap.New[StreamHandler]()
}

// StreamMapOf builds a stream map from routes in the given order.
func StreamMapOf(routes ...StreamRoute) *StreamMap {
	return routemap.Of(routes...)
}

// PluginID is the identifier MockPlugin registers under.
const PluginID = "sse.mock"

// MockPlugin short-circuits connects that match a mock stream route
// with a simulated stream that plays back the scripted events.
//
// Streams passed at construction (or via SetStreams) take precedence;
// without them the plugin reads the live protocol map through the
// StreamSource bound during chain execution.
type MockPlugin struct {
	mu      sync.Mutex
	streams *StreamMap
	delay   time.Duration
	source  StreamSource
}

// MockOptions configures a MockPlugin.
type MockOptions struct {
	// Streams is the explicit stream map. Nil means fall back to the
	// owning protocol's registered streams.
	Streams *StreamMap

	// Delay is waited before each emitted event.
	Delay time.Duration
}

// NewMockPlugin creates a MockPlugin.
func NewMockPlugin(opts MockOptions) *MockPlugin {
	return &MockPlugin{
		streams: opts.Streams,
		delay:   opts.Delay,
	}
}

// ID implements plugin.Plugin.
func (p *MockPlugin) ID() string { return PluginID }

// SetStreams replaces the plugin's explicit stream map. Subsequent
// connects match against the new map.
func (p *MockPlugin) SetStreams(m *StreamMap) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streams = m
}

// BindStreamSource implements StreamSourceBinder.
func (p *MockPlugin) BindStreamSource(src StreamSource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = src
}

func (p *MockPlugin) effectiveStreams() (*StreamMap, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streams != nil {
		return p.streams, p.delay
	}
	if p.source != nil {
		return p.source.MockStreams(), p.delay
	}
	return nil, p.delay
}

// OnConnect implements ConnectHook. A matching route short-circuits
// the chain with a simulated stream; no match passes the context
// through unchanged.
func (p *MockPlugin) OnConnect(_ context.Context, cc ConnectContext) (ConnectOutcome, error) {
	streams, delay := p.effectiveStreams()
	if streams == nil {
		return ContinueWith(cc), nil
	}

	path := cc.Path()
	_, handler, ok := streams.Find(func(key string) bool {
		return matching.MatchRoute(key, path)
	})
	if !ok {
		return ContinueWith(cc), nil
	}

	return ShortCircuit(newMockStream(handler(), delay)), nil
}

// mockStream plays back a scripted event sequence. It transitions
// connecting -> open -> closed, emits each event after the configured
// delay, fires the EventDone sentinel after the script, and stops
// emitting as soon as Close cancels the pending schedule.
type mockStream struct {
	id string
	listeners

	mu    sync.Mutex
	state ReadyState

	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

func newMockStream(events []Event, delay time.Duration) *mockStream {
	ctx, cancel := context.WithCancel(context.Background())
	s := &mockStream{
		id:     uuid.NewString(),
		state:  ReadyStateConnecting,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(ctx, events, delay)
	return s
}

func (s *mockStream) run(ctx context.Context, events []Event, delay time.Duration) {
	s.mu.Lock()
	if s.state == ReadyStateClosed {
		s.mu.Unlock()
		return
	}
	s.state = ReadyStateOpen
	s.mu.Unlock()

	for _, ev := range events {
		if !s.await(ctx, delay) {
			return
		}
		s.dispatch(ev)
	}

	if ctx.Err() != nil {
		return
	}
	s.dispatch(Event{Type: EventDone})
	s.finish()
}

// await waits out the per-event delay. Returns false when the stream
// was closed in the meantime.
func (s *mockStream) await(ctx context.Context, delay time.Duration) bool {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	} else if ctx.Err() != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != ReadyStateClosed
}

// finish moves the stream to closed exactly once.
func (s *mockStream) finish() {
	s.once.Do(func() {
		s.mu.Lock()
		s.state = ReadyStateClosed
		s.mu.Unlock()
		s.cancel()
		close(s.done)
	})
}

// ID returns the stream's unique identifier.
func (s *mockStream) ID() string { return s.id }

// ReadyState implements Stream.
func (s *mockStream) ReadyState() ReadyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close implements Stream. Pending scheduled emissions are cancelled
// before Close returns; closing a closed stream is a no-op.
func (s *mockStream) Close() error {
	s.finish()
	return nil
}

// OnMessage implements Stream.
func (s *mockStream) OnMessage(fn func(Event)) {
	s.addMessage(fn)
}

// On implements Stream.
func (s *mockStream) On(event string, fn func(Event)) {
	s.addTyped(event, fn)
}

// Done implements Stream.
func (s *mockStream) Done() <-chan struct{} {
	return s.done
}
