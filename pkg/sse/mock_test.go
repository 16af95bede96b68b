package sse

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scripted(events ...Event) StreamHandler {
	return func() []Event { return events }
}

func connectVia(t *testing.T, p *MockPlugin, url string) (Stream, bool) {
	t.Helper()
	outcome, err := p.OnConnect(context.Background(), ConnectContext{URL: url})
	require.NoError(t, err)
	return outcome.ShortCircuited()
}

func TestMockPlugin_MatchShortCircuits(t *testing.T) {
	p := NewMockPlugin(MockOptions{
		Streams: StreamMapOf(StreamRoute{Key: "/notifications", Handler: scripted(Event{Data: "hi"})}),
	})

	s, ok := connectVia(t, p, "/notifications")
	require.True(t, ok)
	defer func() { _ = s.Close() }()
}

func TestMockPlugin_NoMatchPassesThrough(t *testing.T) {
	p := NewMockPlugin(MockOptions{
		Streams: StreamMapOf(StreamRoute{Key: "/notifications", Handler: scripted()}),
	})

	_, ok := connectVia(t, p, "/other")
	assert.False(t, ok)
}

func TestMockPlugin_ParamPattern(t *testing.T) {
	p := NewMockPlugin(MockOptions{
		Streams: StreamMapOf(StreamRoute{Key: "/users/:id/feed", Handler: scripted()}),
	})

	s, ok := connectVia(t, p, "/users/42/feed")
	require.True(t, ok)
	_ = s.Close()

	_, ok = connectVia(t, p, "/users/42/feed/extra")
	assert.False(t, ok)
}

func TestMockStream_EmitsScriptAndDoneSentinel(t *testing.T) {
	p := NewMockPlugin(MockOptions{
		Streams: StreamMapOf(StreamRoute{Key: "/s", Handler: scripted(
			Event{Data: "one"},
			Event{Data: "two"},
			Event{Type: "named", Data: "three"},
		)}),
	})

	s, ok := connectVia(t, p, "/s")
	require.True(t, ok)

	var messages, named []string
	done := make(chan struct{})
	s.OnMessage(func(ev Event) { messages = append(messages, ev.Data) })
	s.On("named", func(ev Event) { named = append(named, ev.Data) })
	s.On(EventDone, func(Event) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("done sentinel never fired")
	}
	<-s.Done()

	assert.Equal(t, []string{"one", "two"}, messages)
	assert.Equal(t, []string{"three"}, named)
	assert.Equal(t, ReadyStateClosed, s.ReadyState())
}

func TestMockStream_ZeroDelayBuffersEventsUntilListenersAttach(t *testing.T) {
	p := NewMockPlugin(MockOptions{
		Streams: StreamMapOf(StreamRoute{Key: "/s", Handler: scripted(
			Event{Data: "one"},
			Event{Type: "named", Data: "two"},
		)}),
	})

	s, ok := connectVia(t, p, "/s")
	require.True(t, ok)

	// Let the whole zero-delay script play out before anything
	// listens. Nothing may be lost.
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stream never finished")
	}

	var messages, named, done []string
	s.OnMessage(func(ev Event) { messages = append(messages, ev.Data) })
	s.On("named", func(ev Event) { named = append(named, ev.Data) })
	s.On(EventDone, func(ev Event) { done = append(done, ev.Type) })

	assert.Equal(t, []string{"one"}, messages)
	assert.Equal(t, []string{"two"}, named)
	assert.Equal(t, []string{EventDone}, done)
}

func TestMockStream_ReadyStateTransitions(t *testing.T) {
	// Hold the stream open with a long per-event delay to observe the
	// open state.
	p := NewMockPlugin(MockOptions{
		Streams: StreamMapOf(StreamRoute{Key: "/s", Handler: scripted(Event{Data: "x"})}),
		Delay:   time.Second,
	})

	s, ok := connectVia(t, p, "/s")
	require.True(t, ok)
	defer func() { _ = s.Close() }()

	deadline := time.Now().Add(time.Second)
	for s.ReadyState() == ReadyStateConnecting && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, ReadyStateOpen, s.ReadyState())

	require.NoError(t, s.Close())
	assert.Equal(t, ReadyStateClosed, s.ReadyState())
}

func TestMockStream_CloseHaltsScheduledEmissions(t *testing.T) {
	const total = 6
	delay := 30 * time.Millisecond

	events := make([]Event, total)
	for i := range events {
		events[i] = Event{Data: "tick"}
	}

	p := NewMockPlugin(MockOptions{
		Streams: StreamMapOf(StreamRoute{Key: "/ticks", Handler: scripted(events...)}),
		Delay:   delay,
	})

	s, ok := connectVia(t, p, "/ticks")
	require.True(t, ok)

	var received atomic.Int64
	s.OnMessage(func(Event) { received.Add(1) })

	// Let a few events through, then close mid-schedule.
	time.Sleep(2*delay + delay/2)
	require.NoError(t, s.Close())
	atClose := received.Load()
	assert.Less(t, atClose, int64(total))

	// Wait past the full schedule: the count must not move.
	time.Sleep(time.Duration(total+2) * delay)
	assert.Equal(t, atClose, received.Load(), "no events may be delivered after Close")
	assert.Equal(t, ReadyStateClosed, s.ReadyState())
}

func TestMockStream_CloseIsIdempotent(t *testing.T) {
	s := newMockStream([]Event{{Data: "x"}}, time.Second)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, ReadyStateClosed, s.ReadyState())

	select {
	case <-s.Done():
	default:
		t.Fatal("Done channel must be closed after Close")
	}
}

func TestMockStream_HasUniqueID(t *testing.T) {
	a := newMockStream(nil, 0)
	b := newMockStream(nil, 0)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestMockPlugin_SetStreamsReplacesMap(t *testing.T) {
	p := NewMockPlugin(MockOptions{
		Streams: StreamMapOf(StreamRoute{Key: "/old", Handler: scripted()}),
	})
	p.SetStreams(StreamMapOf(StreamRoute{Key: "/new", Handler: scripted()}))

	_, ok := connectVia(t, p, "/old")
	assert.False(t, ok)
	s, ok := connectVia(t, p, "/new")
	require.True(t, ok)
	_ = s.Close()
}

func TestMockPlugin_FallsBackToProtocolMap(t *testing.T) {
	protocol := New()
	protocol.RegisterMockMap(StreamMapOf(StreamRoute{Key: "/feed", Handler: scripted(Event{Data: "hi"})}))
	protocol.Plugins().Add(NewMockPlugin(MockOptions{}))

	// No dialer is configured, so a returned stream proves the plugin
	// read the protocol's live map and short-circuited.
	s, err := protocol.Connect(context.Background(), ConnectContext{URL: "/feed"})
	require.NoError(t, err)
	require.NotNil(t, s)
	_ = s.Close()
}

func TestMockPlugin_ExplicitStreamsTakePrecedence(t *testing.T) {
	protocol := New()
	protocol.RegisterMockMap(StreamMapOf(StreamRoute{Key: "/feed", Handler: scripted(Event{Data: "protocol"})}))

	p := NewMockPlugin(MockOptions{
		Streams: StreamMapOf(StreamRoute{Key: "/feed", Handler: scripted(Event{Data: "explicit"})}),
	})
	protocol.Plugins().Add(p)

	s, err := protocol.Connect(context.Background(), ConnectContext{URL: "/feed"})
	require.NoError(t, err)

	got := make(chan string, 1)
	s.OnMessage(func(ev Event) { got <- ev.Data })

	select {
	case data := <-got:
		assert.Equal(t, "explicit", data)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	_ = s.Close()
}
