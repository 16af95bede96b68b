// Package rest implements the request/response protocol variant and
// its plugin chain.
//
// A Protocol instance composes globally registered plugins with its own
// instance plugins into one ordered pipeline. Execute folds the request
// context through each plugin's OnRequest hook in order; a hook may
// pass the context through, return a transformed copy, or short-circuit
// with a synthesized response, in which case no further plugins run and
// the transport is never invoked. After the transport call, OnResponse
// hooks run in reverse order.
//
// Mock maps use keys of the form "METHOD /path" where path segments may
// be ":param" wildcards. Services register their own mock routes on the
// protocol instance at load time; MockPlugin short-circuits matching
// requests with handler-produced data.
package rest
