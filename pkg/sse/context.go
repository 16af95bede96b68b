package sse

import "net/url"

// ConnectContext describes one connection attempt as it flows through
// the plugin chain. Threaded by value, like rest.RequestContext.
type ConnectContext struct {
	// URL is the subscribe target. It may be absolute or a path
	// resolved against the dialer's base URL.
	URL string

	// Header holds single-value request headers.
	Header map[string]string
}

// WithHeader returns a copy of the context with the header set.
func (cc ConnectContext) WithHeader(key, value string) ConnectContext {
	header := make(map[string]string, len(cc.Header)+1)
	for k, v := range cc.Header {
		header[k] = v
	}
	header[key] = value
	cc.Header = header
	return cc
}

// Path returns the path portion of the context URL, used for mock
// stream matching.
func (cc ConnectContext) Path() string {
	u, err := url.Parse(cc.URL)
	if err != nil {
		return cc.URL
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

// outcomeKind discriminates ConnectOutcome variants.
type outcomeKind int

const (
	outcomeContinue outcomeKind = iota
	outcomeShortCircuit
)

// ConnectOutcome is the result of an OnConnect hook: either a context
// to continue the chain with, or a short-circuit stream that becomes
// the final result of the connect.
type ConnectOutcome struct {
	kind    outcomeKind
	connect ConnectContext
	stream  Stream
}

// ContinueWith lets the chain proceed with cc.
func ContinueWith(cc ConnectContext) ConnectOutcome {
	return ConnectOutcome{kind: outcomeContinue, connect: cc}
}

// ShortCircuit stops the chain: s is returned to the caller, no
// further plugins run and the dialer is never invoked.
func ShortCircuit(s Stream) ConnectOutcome {
	return ConnectOutcome{kind: outcomeShortCircuit, stream: s}
}

// ShortCircuited returns the synthesized stream and true when the
// outcome is a short-circuit.
func (o ConnectOutcome) ShortCircuited() (Stream, bool) {
	if o.kind == outcomeShortCircuit {
		return o.stream, true
	}
	return nil, false
}

// Connect returns the context to continue with. Only meaningful for
// continue outcomes.
func (o ConnectOutcome) Connect() ConnectContext {
	return o.connect
}
