package rest

import "context"

// RequestHook is the before-phase capability. Hooks run sequentially
// in chain order; a hook error fails the whole call.
type RequestHook interface {
	OnRequest(ctx context.Context, rc RequestContext) (RequestOutcome, error)
}

// ResponseHook is the after-phase capability. Hooks run in reverse
// chain order and must return a non-nil response, which may be the
// input unchanged or a transformed copy. Response hooks do not run for
// short-circuited calls.
type ResponseHook interface {
	OnResponse(ctx context.Context, resp *Response) (*Response, error)
}

// MockSource is the read-only handle a protocol instance exposes to
// plugins that need its live mock routes. It is a lookup relation, not
// an ownership reference.
type MockSource interface {
	MockRoutes() *MockMap
}

// MockSourceBinder is implemented by plugins that fall back to the
// owning protocol's mock map. The protocol binds the source each time
// the plugin executes within its chain.
type MockSourceBinder interface {
	BindMockSource(src MockSource)
}
