package sse

import "sync"

// Event is one server-sent event.
type Event struct {
	// Type is the event name; empty for plain messages.
	Type string

	// ID is the event's last-event-id value, if any.
	ID string

	// Data is the event payload.
	Data string
}

// Stream is a live SSE connection, real or simulated.
type Stream interface {
	// ReadyState reports the current lifecycle phase.
	ReadyState() ReadyState

	// Close halts the stream. No further scheduled events are
	// delivered after Close returns; closing a closed stream is a
	// no-op.
	Close() error

	// OnMessage registers a callback for plain message events. Message
	// events emitted before any message callback was registered are
	// buffered and replayed, in order, to the first one.
	OnMessage(fn func(Event))

	// On registers a callback for a named event type, including the
	// EventDone sentinel. Events of that type emitted before any
	// matching callback was registered are buffered and replayed, in
	// order, to the first one.
	On(event string, fn func(Event))

	// Done returns a channel closed when the stream reaches the
	// closed state, naturally or via Close.
	Done() <-chan struct{}
}

// listeners fan events out to registered callbacks. Used by both the
// mock stream and the HTTP stream.
//
// Playback may start before the caller has attached anything, so an
// event with no matching callback is buffered rather than dropped;
// registering the first matching callback replays the buffered events
// to it, in emission order.
type listeners struct {
	mu        sync.Mutex
	onMessage []func(Event)
	byType    map[string][]func(Event)
	pending   []Event

	// deliverMu serializes callback invocation: a replay on attach and
	// a live dispatch never run concurrently.
	deliverMu sync.Mutex
}

func (l *listeners) addMessage(fn func(Event)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.onMessage = append(l.onMessage, fn)
	replay := l.takePending("")
	l.mu.Unlock()

	l.deliver(replay, []func(Event){fn})
}

func (l *listeners) addTyped(event string, fn func(Event)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.byType == nil {
		l.byType = make(map[string][]func(Event))
	}
	l.byType[event] = append(l.byType[event], fn)
	replay := l.takePending(event)
	l.mu.Unlock()

	l.deliver(replay, []func(Event){fn})
}

// takePending removes and returns the buffered events of one type.
// Caller must hold mu.
func (l *listeners) takePending(event string) []Event {
	var taken []Event
	kept := l.pending[:0]
	for _, ev := range l.pending {
		if ev.Type == event {
			taken = append(taken, ev)
		} else {
			kept = append(kept, ev)
		}
	}
	l.pending = kept
	return taken
}

// dispatch invokes the callbacks registered for ev. Message callbacks
// receive events with an empty type; typed callbacks receive events
// whose type matches. An event nothing listens for yet is buffered for
// replay on the first matching registration.
func (l *listeners) dispatch(ev Event) {
	l.mu.Lock()
	var fns []func(Event)
	if ev.Type == "" {
		fns = append(fns, l.onMessage...)
	} else {
		fns = append(fns, l.byType[ev.Type]...)
	}
	if len(fns) == 0 {
		l.pending = append(l.pending, ev)
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	l.deliver([]Event{ev}, fns)
}

func (l *listeners) deliver(events []Event, fns []func(Event)) {
	if len(events) == 0 {
		return
	}
	l.deliverMu.Lock()
	defer l.deliverMu.Unlock()
	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}
