package rest

import "net/url"

// RequestContext describes one request as it flows through the plugin
// chain. It is threaded by value: hooks return a new or updated copy
// rather than mutating shared state, and each call to Execute gets its
// own context, so concurrent calls never interfere.
type RequestContext struct {
	// Method is the HTTP method, uppercase.
	Method string

	// URL is the request target. It may be absolute or a path
	// resolved against the transport's base URL.
	URL string

	// Header holds single-value request headers.
	Header map[string]string

	// Body is the raw request body, nil for body-less requests.
	Body []byte
}

// WithHeader returns a copy of the context with the header set. The
// header map is cloned so the original context is left untouched.
func (rc RequestContext) WithHeader(key, value string) RequestContext {
	header := make(map[string]string, len(rc.Header)+1)
	for k, v := range rc.Header {
		header[k] = v
	}
	header[key] = value
	rc.Header = header
	return rc
}

// Path returns the path portion of the context URL, used for mock
// route matching. Returns the URL unchanged if it does not parse.
func (rc RequestContext) Path() string {
	u, err := url.Parse(rc.URL)
	if err != nil {
		return rc.URL
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

// Response is the terminal value of a REST call: either what the
// transport produced or what a short-circuiting plugin synthesized.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// Header holds single-value response headers.
	Header map[string]string

	// Data is the raw response body.
	Data []byte
}
