package sse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hai3/sdk/pkg/plugin"
)

// calllog is a goroutine-safe invocation log; close hooks fire on a
// watcher goroutine.
type calllog struct {
	mu      sync.Mutex
	entries []string
}

func (l *calllog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, s)
}

func (l *calllog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// connectPlugin records hook invocations and can short-circuit or fail.
type connectPlugin struct {
	id         string
	log        *calllog
	intercept  Stream
	connectErr error
}

func (p *connectPlugin) ID() string { return p.id }

func (p *connectPlugin) OnConnect(_ context.Context, cc ConnectContext) (ConnectOutcome, error) {
	p.log.add(p.id + ".onConnect")
	if p.connectErr != nil {
		return ConnectOutcome{}, p.connectErr
	}
	if p.intercept != nil {
		return ShortCircuit(p.intercept), nil
	}
	return ContinueWith(cc), nil
}

func (p *connectPlugin) OnClose(Stream) {
	p.log.add(p.id + ".onClose")
}

// stubDialer returns a canned stream.
type stubDialer struct {
	calls  []ConnectContext
	stream Stream
	err    error
}

func (d *stubDialer) Dial(_ context.Context, cc ConnectContext) (Stream, error) {
	d.calls = append(d.calls, cc)
	if d.err != nil {
		return nil, d.err
	}
	return d.stream, nil
}

func waitLog(t *testing.T, log *calllog, want int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if entries := log.get(); len(entries) >= want {
			return entries
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d log entries, have %v", want, log.get())
	return nil
}

func TestProtocol_PluginsInOrder_GlobalBeforeInstance(t *testing.T) {
	registry := plugin.NewRegistry()
	log := &calllog{}

	registry.Add(Kind, &connectPlugin{id: "g", log: log})

	p := New(WithGlobalRegistry(registry))
	p.Plugins().Add(&connectPlugin{id: "i", log: log})

	ordered := p.PluginsInOrder()
	require.Len(t, ordered, 2)
	assert.Equal(t, "g", ordered[0].ID())
	assert.Equal(t, "i", ordered[1].ID())
}

func TestProtocol_Connect_ShortCircuitSkipsDialer(t *testing.T) {
	log := &calllog{}
	mocked := newMockStream(nil, 0)
	dialer := &stubDialer{}

	p := New(WithDialer(dialer))
	p.Plugins().Add(&connectPlugin{id: "a", log: log})
	p.Plugins().Add(&connectPlugin{id: "b", log: log, intercept: mocked})
	p.Plugins().Add(&connectPlugin{id: "c", log: log})

	s, err := p.Connect(context.Background(), ConnectContext{URL: "/stream"})
	require.NoError(t, err)
	assert.Same(t, Stream(mocked), s)
	assert.Empty(t, dialer.calls, "the dialer is never invoked after a short-circuit")

	entries := log.get()
	assert.Contains(t, entries, "a.onConnect")
	assert.Contains(t, entries, "b.onConnect")
	assert.NotContains(t, entries, "c.onConnect", "no further plugins run after a short-circuit")
}

func TestProtocol_Connect_HookErrorFailsConnect(t *testing.T) {
	log := &calllog{}
	boom := errors.New("boom")
	dialer := &stubDialer{stream: newMockStream(nil, 0)}

	p := New(WithDialer(dialer))
	p.Plugins().Add(&connectPlugin{id: "bad", log: log, connectErr: boom})

	_, err := p.Connect(context.Background(), ConnectContext{URL: "/stream"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, dialer.calls)
}

func TestProtocol_Connect_NoDialer(t *testing.T) {
	p := New()
	_, err := p.Connect(context.Background(), ConnectContext{URL: "/stream"})
	assert.ErrorIs(t, err, ErrNoDialer)
}

func TestProtocol_CloseHooksRunInReverseOrder(t *testing.T) {
	log := &calllog{}
	dialer := &stubDialer{stream: newMockStream(nil, 0)}

	p := New(WithDialer(dialer))
	p.Plugins().Add(&connectPlugin{id: "a", log: log})
	p.Plugins().Add(&connectPlugin{id: "b", log: log})

	s, err := p.Connect(context.Background(), ConnectContext{URL: "/stream"})
	require.NoError(t, err)

	require.NoError(t, s.Close())

	entries := waitLog(t, log, 4)
	assert.Equal(t, []string{"a.onConnect", "b.onConnect", "b.onClose", "a.onClose"}, entries)
}

func TestProtocol_CloseHooksRunOnNaturalEnd(t *testing.T) {
	log := &calllog{}
	stream := newMockStream([]Event{{Data: "1"}}, 0)
	dialer := &stubDialer{stream: stream}

	p := New(WithDialer(dialer))
	p.Plugins().Add(&connectPlugin{id: "a", log: log})

	_, err := p.Connect(context.Background(), ConnectContext{URL: "/stream"})
	require.NoError(t, err)

	entries := waitLog(t, log, 2)
	assert.Equal(t, "a.onClose", entries[len(entries)-1])
}

func TestProtocol_RegisterMockMap_LastWriteWins(t *testing.T) {
	p := New()
	p.RegisterMockMap(StreamMapOf(StreamRoute{Key: "/s", Handler: func() []Event { return []Event{{Data: "v1"}} }}))
	p.RegisterMockMap(StreamMapOf(StreamRoute{Key: "/s", Handler: func() []Event { return []Event{{Data: "v2"}} }}))

	handler, ok := p.MockStreams().Get("/s")
	require.True(t, ok)
	events := handler()
	require.Len(t, events, 1)
	assert.Equal(t, "v2", events[0].Data)
}

func TestProtocol_MockMapInstanceIsolation(t *testing.T) {
	a := New()
	b := New()
	a.RegisterMockMap(StreamMapOf(StreamRoute{Key: "/only-a", Handler: func() []Event { return nil }}))

	_, ok := b.MockStreams().Get("/only-a")
	assert.False(t, ok)
}
