package config

import (
	"errors"
	"fmt"
	"time"
)

// Profile is a client configuration profile.
type Profile struct {
	// BaseURL is the API origin requests resolve against.
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// Timeout is the request timeout as a Go duration string
	// ("30s", "2m"). Empty means the transport default.
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Header holds headers applied to every request.
	Header map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Log configures SDK logging.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Mocks configures short-circuit mocking.
	Mocks MockConfig `json:"mocks,omitempty" yaml:"mocks,omitempty"`
}

// LogConfig configures SDK logging.
type LogConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is the output format: text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MockConfig is the mock section of a profile.
type MockConfig struct {
	// Enabled turns the mock plugins on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DelayMs is waited before each synthesized response or event.
	DelayMs int `json:"delayMs,omitempty" yaml:"delayMs,omitempty"`

	// Routes are REST mock routes.
	Routes []MockRoute `json:"routes,omitempty" yaml:"routes,omitempty"`

	// Streams are SSE mock streams.
	Streams []StreamDef `json:"streams,omitempty" yaml:"streams,omitempty"`
}

// MockRoute defines one REST mock route. Exactly one of Body, Expr or
// Variants must be set.
type MockRoute struct {
	// Key is the route key, "METHOD /path" with ":param" wildcards.
	Key string `json:"key" yaml:"key"`

	// Body is a static response payload.
	Body any `json:"body,omitempty" yaml:"body,omitempty"`

	// Expr is an expr program producing the payload. The environment
	// exposes the parsed request body as "body" and a
	// "jsonpath(path)" lookup function over it.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`

	// Variants select a payload by request body: the first variant
	// whose When conditions all hold wins.
	Variants []MockVariant `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// MockVariant is one conditional payload of a route.
type MockVariant struct {
	// When maps JSONPath expressions to expected values; all must
	// hold against the request body. An empty When always matches,
	// making the variant a fallback.
	When map[string]any `json:"when,omitempty" yaml:"when,omitempty"`

	// Body is the variant's static payload.
	Body any `json:"body,omitempty" yaml:"body,omitempty"`

	// Expr is the variant's expr program; same environment as
	// MockRoute.Expr.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// StreamDef defines one SSE mock stream.
type StreamDef struct {
	// Key is the bare path key, ":param" wildcards allowed.
	Key string `json:"key" yaml:"key"`

	// Events is the scripted sequence.
	Events []EventDef `json:"events" yaml:"events"`
}

// EventDef is one scripted stream event.
type EventDef struct {
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Data string `json:"data" yaml:"data"`
}

// TimeoutDuration parses the profile timeout. Zero with no error when
// unset.
func (p *Profile) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", p.Timeout, err)
	}
	return d, nil
}

// Validate checks the profile for configuration errors.
func (p *Profile) Validate() error {
	if _, err := p.TimeoutDuration(); err != nil {
		return err
	}
	for i, route := range p.Mocks.Routes {
		if route.Key == "" {
			return fmt.Errorf("mock route %d: key is required", i)
		}
		set := 0
		if route.Body != nil {
			set++
		}
		if route.Expr != "" {
			set++
		}
		if len(route.Variants) > 0 {
			set++
		}
		if set != 1 {
			return fmt.Errorf("mock route %q: exactly one of body, expr or variants is required", route.Key)
		}
		for j, v := range route.Variants {
			if v.Body != nil && v.Expr != "" {
				return fmt.Errorf("mock route %q variant %d: body and expr are mutually exclusive", route.Key, j)
			}
		}
	}
	for i, stream := range p.Mocks.Streams {
		if stream.Key == "" {
			return fmt.Errorf("mock stream %d: key is required", i)
		}
	}
	return nil
}

// ErrInvalidProfile wraps validation failures reported by loaders.
var ErrInvalidProfile = errors.New("invalid profile")
