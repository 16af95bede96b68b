package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hai3/sdk/pkg/rest"
	"github.com/hai3/sdk/pkg/sse"
)

var secret = []byte("test-secret")

func newPlugin(t *testing.T) *Plugin {
	t.Helper()
	p, err := New(Options{Secret: secret, Issuer: "hai3", Subject: "tester"})
	require.NoError(t, err)
	return p
}

func parseToken(t *testing.T, header string) *jwt.RegisteredClaims {
	t.Helper()
	raw, ok := strings.CutPrefix(header, "Bearer ")
	require.True(t, ok, "header %q should carry a bearer token", header)

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	require.NoError(t, err)
	return claims
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestPlugin_OnRequestInjectsBearerToken(t *testing.T) {
	p := newPlugin(t)

	outcome, err := p.OnRequest(context.Background(), rest.RequestContext{Method: "GET", URL: "/x"})
	require.NoError(t, err)

	_, shortCircuited := outcome.ShortCircuited()
	require.False(t, shortCircuited)

	claims := parseToken(t, outcome.Request().Header["Authorization"])
	assert.Equal(t, "hai3", claims.Issuer)
	assert.Equal(t, "tester", claims.Subject)
}

func TestPlugin_OnConnectInjectsBearerToken(t *testing.T) {
	p := newPlugin(t)

	outcome, err := p.OnConnect(context.Background(), sse.ConnectContext{URL: "/stream"})
	require.NoError(t, err)

	_, shortCircuited := outcome.ShortCircuited()
	require.False(t, shortCircuited)
	parseToken(t, outcome.Connect().Header["Authorization"])
}

func TestPlugin_InputContextNotMutated(t *testing.T) {
	p := newPlugin(t)
	rc := rest.RequestContext{Method: "GET", URL: "/x", Header: map[string]string{}}

	_, err := p.OnRequest(context.Background(), rc)
	require.NoError(t, err)
	assert.Empty(t, rc.Header)
}

func TestPlugin_OnResponseCountsUnauthorized(t *testing.T) {
	p := newPlugin(t)
	ctx := context.Background()

	resp := &rest.Response{Status: 200}
	got, err := p.OnResponse(ctx, resp)
	require.NoError(t, err)
	assert.Same(t, resp, got)
	assert.EqualValues(t, 0, p.Unauthorized())

	_, err = p.OnResponse(ctx, &rest.Response{Status: 401})
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.Unauthorized())
}

func TestPlugin_TokenExpiryRespectsTTL(t *testing.T) {
	p, err := New(Options{Secret: secret, TTL: 5 * time.Minute})
	require.NoError(t, err)

	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return frozen }

	outcome, err := p.OnRequest(context.Background(), rest.RequestContext{Method: "GET", URL: "/x"})
	require.NoError(t, err)

	raw, _ := strings.CutPrefix(outcome.Request().Header["Authorization"], "Bearer ")
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err = parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return secret, nil })
	require.NoError(t, err)

	assert.Equal(t, frozen.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, frozen.Add(5*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestPlugin_DestroyDropsSigningKey(t *testing.T) {
	p := newPlugin(t)
	require.NoError(t, p.Destroy())

	_, err := p.OnRequest(context.Background(), rest.RequestContext{Method: "GET", URL: "/x"})
	assert.Error(t, err)
}
