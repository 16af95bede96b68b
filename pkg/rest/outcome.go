package rest

// outcomeKind discriminates RequestOutcome variants.
type outcomeKind int

const (
	outcomeContinue outcomeKind = iota
	outcomeShortCircuit
)

// RequestOutcome is the result of an OnRequest hook: either a context
// to continue the chain with, or a short-circuit response that becomes
// the final result of the call. Construct values with ContinueWith or
// ShortCircuit; the zero value continues with a zero context.
type RequestOutcome struct {
	kind     outcomeKind
	request  RequestContext
	response *Response
}

// ContinueWith lets the chain proceed with rc, which may be the hook's
// input unchanged or a transformed copy.
func ContinueWith(rc RequestContext) RequestOutcome {
	return RequestOutcome{kind: outcomeContinue, request: rc}
}

// ShortCircuit stops the chain: resp is returned to the caller, no
// further plugins run and the transport is never invoked.
func ShortCircuit(resp *Response) RequestOutcome {
	return RequestOutcome{kind: outcomeShortCircuit, response: resp}
}

// ShortCircuited returns the synthesized response and true when the
// outcome is a short-circuit.
func (o RequestOutcome) ShortCircuited() (*Response, bool) {
	if o.kind == outcomeShortCircuit {
		return o.response, true
	}
	return nil, false
}

// Request returns the context to continue with. Only meaningful for
// continue outcomes.
func (o RequestOutcome) Request() RequestContext {
	return o.request
}
