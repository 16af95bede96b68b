// Package sse implements the Server-Sent Events protocol variant and
// its plugin chain.
//
// Connect mirrors the REST chain for the connect phase: OnConnect
// hooks fold the connect context in order, a short-circuit produces a
// simulated stream instead of dialing, and the opened stream is the
// terminal value. There is no symmetric fold at connect time; OnClose
// hooks run in reverse registration order when the stream ends or is
// explicitly closed.
//
// Mock stream keys are bare "/path" strings (an SSE connection is
// always a GET-style subscribe), with the same ":param" segment
// wildcards as REST mock keys.
package sse

import "errors"

// SSE constants per the W3C specification.
const (
	// ContentTypeEventStream is the MIME type for SSE responses.
	ContentTypeEventStream = "text/event-stream"
)

// SSE field prefixes per the W3C specification.
const (
	fieldEvent   = "event:"
	fieldData    = "data:"
	fieldID      = "id:"
	fieldRetry   = "retry:"
	fieldComment = ":"
)

// ReadyState describes a stream's lifecycle phase, modeled on the
// EventSource readyState values.
type ReadyState int32

const (
	ReadyStateConnecting ReadyState = iota
	ReadyStateOpen
	ReadyStateClosed
)

// String returns the lowercase state name.
func (s ReadyState) String() string {
	switch s {
	case ReadyStateConnecting:
		return "connecting"
	case ReadyStateOpen:
		return "open"
	case ReadyStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// EventDone is the sentinel event type emitted when a mock stream has
// delivered its full script.
const EventDone = "done"

// Errors.
var (
	// ErrNoDialer indicates no dialer is configured and no plugin
	// short-circuited the connect.
	ErrNoDialer = errors.New("sse: no dialer configured")

	// ErrNotEventStream indicates the server did not answer with an
	// event-stream content type.
	ErrNotEventStream = errors.New("sse: response is not an event stream")
)
