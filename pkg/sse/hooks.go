package sse

import "context"

// ConnectHook is the before-phase capability for the connect chain.
// Hooks run sequentially in chain order; a hook error fails the
// connect.
type ConnectHook interface {
	OnConnect(ctx context.Context, cc ConnectContext) (ConnectOutcome, error)
}

// CloseHook is invoked when a connected stream ends, naturally or via
// Close. Hooks run in reverse chain order, at most once per stream.
type CloseHook interface {
	OnClose(s Stream)
}

// StreamSource is the read-only handle a protocol instance exposes to
// plugins that need its live mock stream map. A lookup relation, not
// an ownership reference.
type StreamSource interface {
	MockStreams() *StreamMap
}

// StreamSourceBinder is implemented by plugins that fall back to the
// owning protocol's stream map. The protocol binds the source each
// time the plugin executes within its chain.
type StreamSourceBinder interface {
	BindStreamSource(src StreamSource)
}
