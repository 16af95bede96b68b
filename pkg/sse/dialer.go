package sse

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// HTTPDialer opens real event streams over net/http with a GET-style
// subscribe and decodes the W3C wire format.
type HTTPDialer struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPDialerOption configures an HTTPDialer.
type HTTPDialerOption func(*HTTPDialer)

// WithDialHTTPClient replaces the underlying http.Client. The client
// must not set a total-request timeout; streams are long-lived.
func WithDialHTTPClient(client *http.Client) HTTPDialerOption {
	return func(d *HTTPDialer) {
		d.httpClient = client
	}
}

// NewHTTPDialer creates a dialer. Relative connect URLs are resolved
// against baseURL.
func NewHTTPDialer(baseURL string, opts ...HTTPDialerOption) *HTTPDialer {
	d := &HTTPDialer{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial implements Dialer.
func (d *HTTPDialer) Dial(ctx context.Context, cc ConnectContext) (Stream, error) {
	target := cc.URL
	if u, err := url.Parse(target); err != nil {
		return nil, fmt.Errorf("sse: invalid connect URL %q: %w", target, err)
	} else if !u.IsAbs() && d.baseURL != "" {
		if !strings.HasPrefix(target, "/") {
			target = "/" + target
		}
		target = d.baseURL + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("sse: failed to build request: %w", err)
	}
	req.Header.Set("Accept", ContentTypeEventStream)
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range cc.Header {
		req.Header.Set(k, v)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sse: connect failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("sse: connect failed: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, ContentTypeEventStream) {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: content type %q", ErrNotEventStream, ct)
	}

	s := &httpStream{
		body:  resp.Body,
		state: ReadyStateOpen,
		done:  make(chan struct{}),
	}
	go s.read()
	return s, nil
}

// httpStream decodes events from a live response body.
type httpStream struct {
	listeners

	body io.ReadCloser

	mu    sync.Mutex
	state ReadyState

	once sync.Once
	done chan struct{}
}

// read scans the body line by line, accumulating fields until a blank
// line dispatches the event, per the W3C format.
func (s *httpStream) read() {
	defer s.finish()

	scanner := bufio.NewScanner(s.body)
	var eventType, eventID string
	var data []string

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if line == "" {
			if len(data) > 0 {
				s.dispatch(Event{
					Type: eventType,
					ID:   eventID,
					Data: strings.Join(data, "\n"),
				})
			}
			eventType = ""
			data = nil
			continue
		}

		switch {
		case strings.HasPrefix(line, fieldData):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, fieldData), " "))
		case strings.HasPrefix(line, fieldEvent):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, fieldEvent))
		case strings.HasPrefix(line, fieldID):
			eventID = strings.TrimSpace(strings.TrimPrefix(line, fieldID))
		case strings.HasPrefix(line, fieldRetry):
			// Reconnection hints are not acted on.
		case strings.HasPrefix(line, fieldComment):
			// Keepalive comment.
		}
	}
}

func (s *httpStream) finish() {
	s.once.Do(func() {
		s.mu.Lock()
		s.state = ReadyStateClosed
		s.mu.Unlock()
		_ = s.body.Close()
		close(s.done)
	})
}

// ReadyState implements Stream.
func (s *httpStream) ReadyState() ReadyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close implements Stream.
func (s *httpStream) Close() error {
	s.finish()
	return nil
}

// OnMessage implements Stream.
func (s *httpStream) OnMessage(fn func(Event)) {
	s.addMessage(fn)
}

// On implements Stream.
func (s *httpStream) On(event string, fn func(Event)) {
	s.addTyped(event, fn)
}

// Done implements Stream.
func (s *httpStream) Done() <-chan struct{} {
	return s.done
}
