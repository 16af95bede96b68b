package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProfile_ValidYAML(t *testing.T) {
	path := writeFile(t, "profile.yaml", `
baseUrl: https://api.example.com
timeout: 15s
headers:
  X-Client: hai3
log:
  level: debug
  format: json
mocks:
  enabled: true
  delayMs: 50
  routes:
    - key: "GET /api/users/:id"
      body: {id: "1", name: "Ada"}
  streams:
    - key: "/notifications"
      events:
        - data: "hello"
        - type: alert
          data: "warning"
`)

	profile, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", profile.BaseURL)
	assert.Equal(t, "hai3", profile.Header["X-Client"])
	assert.Equal(t, "debug", profile.Log.Level)
	assert.True(t, profile.Mocks.Enabled)
	assert.Equal(t, 50, profile.Mocks.DelayMs)
	require.Len(t, profile.Mocks.Routes, 1)
	assert.Equal(t, "GET /api/users/:id", profile.Mocks.Routes[0].Key)
	require.Len(t, profile.Mocks.Streams, 1)
	assert.Equal(t, "alert", profile.Mocks.Streams[0].Events[1].Type)

	timeout, err := profile.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, "15s", timeout.String())
}

func TestLoadProfile_ValidJSON(t *testing.T) {
	path := writeFile(t, "profile.json", `{
		"baseUrl": "https://api.example.com",
		"mocks": {"enabled": false}
	}`)

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", profile.BaseURL)
	assert.False(t, profile.Mocks.Enabled)
}

func TestLoadProfile_FileNotFound(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadProfile_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.yaml", "")
	_, err := LoadProfile(path)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoadProfile_InvalidJSON(t *testing.T) {
	path := writeFile(t, "bad.json", "{not json")
	_, err := LoadProfile(path)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestLoadProfile_InvalidYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "baseUrl: [unclosed")
	_, err := LoadProfile(path)
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestLoadProfile_Directory(t *testing.T) {
	_, err := LoadProfile(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr string
	}{
		{
			name:    "route without key",
			profile: Profile{Mocks: MockConfig{Routes: []MockRoute{{Body: "x"}}}},
			wantErr: "key is required",
		},
		{
			name: "route with body and expr",
			profile: Profile{Mocks: MockConfig{Routes: []MockRoute{
				{Key: "GET /x", Body: "a", Expr: "1"},
			}}},
			wantErr: "exactly one of",
		},
		{
			name: "route with nothing",
			profile: Profile{Mocks: MockConfig{Routes: []MockRoute{
				{Key: "GET /x"},
			}}},
			wantErr: "exactly one of",
		},
		{
			name:    "stream without key",
			profile: Profile{Mocks: MockConfig{Streams: []StreamDef{{}}}},
			wantErr: "key is required",
		},
		{
			name:    "bad timeout",
			profile: Profile{Timeout: "soon"},
			wantErr: "invalid timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
