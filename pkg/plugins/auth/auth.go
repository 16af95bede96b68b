// Package auth provides a bearer-token plugin shared by the REST and
// SSE chains.
//
// The plugin signs a short-lived HS256 JWT per call and injects it as
// an Authorization header. Registered globally with both protocol
// kinds it is the canonical cross-cutting plugin: one instance, two
// registrations, independent destroy lifecycles.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hai3/sdk/pkg/rest"
	"github.com/hai3/sdk/pkg/sse"
)

// PluginID is the identifier Plugin registers under.
const PluginID = "auth.bearer"

// Options configures a Plugin.
type Options struct {
	// Secret is the HS256 signing key. Required.
	Secret []byte

	// Issuer and Subject populate the token's registered claims.
	Issuer  string
	Subject string

	// TTL bounds token validity. Defaults to one minute.
	TTL time.Duration
}

// Plugin signs and injects bearer tokens.
type Plugin struct {
	mu      sync.Mutex
	secret  []byte
	issuer  string
	subject string
	ttl     time.Duration

	// now is swapped in tests for deterministic claims.
	now func() time.Time

	unauthorized atomic.Int64
}

// New creates a Plugin.
func New(opts Options) (*Plugin, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("auth: secret is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Plugin{
		secret:  opts.Secret,
		issuer:  opts.Issuer,
		subject: opts.Subject,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// ID implements plugin.Plugin.
func (p *Plugin) ID() string { return PluginID }

// token signs a fresh bearer token.
func (p *Plugin) token() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.secret == nil {
		return "", errors.New("auth: plugin destroyed")
	}

	now := p.now()
	claims := jwt.RegisteredClaims{
		Issuer:    p.issuer,
		Subject:   p.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// OnRequest implements rest.RequestHook.
func (p *Plugin) OnRequest(_ context.Context, rc rest.RequestContext) (rest.RequestOutcome, error) {
	tok, err := p.token()
	if err != nil {
		return rest.RequestOutcome{}, err
	}
	return rest.ContinueWith(rc.WithHeader("Authorization", "Bearer "+tok)), nil
}

// OnResponse implements rest.ResponseHook, counting 401 responses for
// diagnostics.
func (p *Plugin) OnResponse(_ context.Context, resp *rest.Response) (*rest.Response, error) {
	if resp.Status == 401 {
		p.unauthorized.Add(1)
	}
	return resp, nil
}

// OnConnect implements sse.ConnectHook.
func (p *Plugin) OnConnect(_ context.Context, cc sse.ConnectContext) (sse.ConnectOutcome, error) {
	tok, err := p.token()
	if err != nil {
		return sse.ConnectOutcome{}, err
	}
	return sse.ContinueWith(cc.WithHeader("Authorization", "Bearer "+tok)), nil
}

// Unauthorized returns the number of 401 responses observed.
func (p *Plugin) Unauthorized() int64 {
	return p.unauthorized.Load()
}

// Destroy implements plugin.Destroyer, dropping the signing key.
func (p *Plugin) Destroy() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.secret = nil
	return nil
}
