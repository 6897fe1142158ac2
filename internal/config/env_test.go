package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/emailreply/internal/form"
)

// clearEnv unsets every EMAILREPLY_* variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvEndpoint, EnvPath, EnvTone, EnvTimeout, EnvDiscover} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEndpoint, "http://replies.lan:9000")
	t.Setenv(EnvTone, "Friendly")
	t.Setenv(EnvTimeout, "90")
	t.Setenv(EnvDiscover, "true")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "http://replies.lan:9000", cfg.Endpoint.BaseURL)
	assert.Equal(t, form.ToneFriendly, cfg.Tone())
	assert.Equal(t, 90*time.Second, cfg.Timeout())
	assert.True(t, cfg.Discovery.Enabled)
}

func TestApplyEnv_EndpointWithPath(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEndpoint, "https://api.example.com/v2/reply/")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "https://api.example.com", cfg.Endpoint.BaseURL)
	assert.Equal(t, "/v2/reply", cfg.Endpoint.Path)
}

func TestApplyEnv_PathOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPath, "generate")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "/generate", cfg.Endpoint.Path)
}

func TestApplyEnv_Unset(t *testing.T) {
	clearEnv(t)

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: EnvEndpoint, value: "ftp://nope"},
		{key: EnvEndpoint, value: "localhost:8080"},
		{key: EnvTone, value: "sarcastic"},
		{key: EnvTimeout, value: "soon"},
		{key: EnvTimeout, value: "-5s"},
		{key: EnvDiscover, value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			err := Default().ApplyEnv()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "15")

	path := filepath.Join(t.TempDir(), ".env")
	content := "EMAILREPLY_TONE=casual\nEMAILREPLY_TIMEOUT=120\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { _ = os.Unsetenv(EnvTone) })

	assert.Equal(t, "casual", os.Getenv(EnvTone))
	assert.Equal(t, "15", os.Getenv(EnvTimeout), ".env must not override the real environment")
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{in: "30", want: 30 * time.Second},
		{in: " 45s ", want: 45 * time.Second},
		{in: "2m", want: 2 * time.Minute},
		{in: "1500ms", want: 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		got, err := ParseTimeout(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTimeout("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetTimeout_RoundsUp(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetTimeout(1500*time.Millisecond))
	assert.Equal(t, 2, cfg.Endpoint.TimeoutSeconds)
	assert.ErrorIs(t, cfg.SetTimeout(0), ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "version", mutate: func(c *Config) { c.Version = 3 }},
		{name: "scheme", mutate: func(c *Config) { c.Endpoint.BaseURL = "ws://localhost" }},
		{name: "host", mutate: func(c *Config) { c.Endpoint.BaseURL = "http://" }},
		{name: "path", mutate: func(c *Config) { c.Endpoint.Path = "api" }},
		{name: "timeout", mutate: func(c *Config) { c.Endpoint.TimeoutSeconds = 0 }},
		{name: "retries", mutate: func(c *Config) { c.Endpoint.Retries = -1 }},
		{name: "tone", mutate: func(c *Config) { c.Defaults.Tone = "rude" }},
		{name: "discovery timeout", mutate: func(c *Config) { c.Discovery.TimeoutSeconds = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestTone_FallsBackOnUnknown(t *testing.T) {
	cfg := Default()
	cfg.Defaults.Tone = "rude"
	assert.Equal(t, form.DefaultTone, cfg.Tone())
}
