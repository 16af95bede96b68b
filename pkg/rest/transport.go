package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Transport performs the actual network request for a finalized
// context. The default is HTTPTransport; tests substitute their own.
type Transport interface {
	RoundTrip(ctx context.Context, rc RequestContext) (*Response, error)
}

// HTTPTransport executes requests over net/http.
type HTTPTransport struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.httpClient = client
	}
}

// NewHTTPTransport creates a transport. Relative request URLs are
// resolved against baseURL; pass an empty baseURL when contexts carry
// absolute URLs.
func NewHTTPTransport(baseURL string, opts ...HTTPTransportOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip implements Transport.
func (t *HTTPTransport) RoundTrip(ctx context.Context, rc RequestContext) (*Response, error) {
	target, err := t.resolve(rc.URL)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if len(rc.Body) > 0 {
		body = bytes.NewReader(rc.Body)
	}

	req, err := http.NewRequestWithContext(ctx, rc.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range rc.Header {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	header := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		header[k] = resp.Header.Get(k)
	}

	return &Response{
		Status: resp.StatusCode,
		Header: header,
		Data:   data,
	}, nil
}

// resolve joins a possibly relative target with the base URL.
func (t *HTTPTransport) resolve(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", target, err)
	}
	if u.IsAbs() || t.baseURL == "" {
		return target, nil
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return t.baseURL + target, nil
}
