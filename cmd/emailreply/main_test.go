package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/emailreply/internal/config"
	"github.com/muurk/emailreply/internal/discovery"
	"github.com/muurk/emailreply/internal/logging"
	"github.com/muurk/emailreply/internal/stubserver"
)

// resetFlags puts every flag back to its default, since cobra commands
// and their flag variables are package globals
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// isolate points the config directory at a temp dir and clears the
// environment overrides
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{
		config.EnvEndpoint, config.EnvPath, config.EnvTone, config.EnvTimeout, config.EnvDiscover,
		logging.LogLevelEnvVar, logging.LogFileEnvVar,
	} {
		t.Setenv(key, "")
	}
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func newStub(t *testing.T, cfg stubserver.Config) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(stubserver.New(&cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decodeResult(t *testing.T, out string) generateResult {
	t.Helper()
	var res generateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func TestVersionCmd(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "emailreply "), out)

	out, err = execute(t, "", "version", "--format", "json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["version"])
	assert.NotEmpty(t, info["go_version"])
}

func TestGenerateCmd_JSON(t *testing.T) {
	isolate(t)
	ts := newStub(t, stubserver.Config{})

	out, err := execute(t, "Can we move the call to Thursday?\nSam",
		"generate", "--endpoint", ts.URL, "--tone", "formal", "--format", "json")
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.Equal(t, "Succeeded", res.Phase)
	assert.True(t, strings.HasPrefix(res.Reply, "Dear Sam,"), res.Reply)
	assert.Equal(t, "formal", res.Tone)
	assert.Equal(t, ts.URL+"/api/email/response", res.Endpoint)
	assert.NotEmpty(t, res.ID)
	assert.Empty(t, res.Error)
	assert.False(t, res.Copied)
}

func TestGenerateCmd_PlainFromArgs(t *testing.T) {
	isolate(t)
	ts := newStub(t, stubserver.Config{})

	out, err := execute(t, "", "generate", "--endpoint", ts.URL, "--format", "plain", "Lunch", "on", "Friday?")
	require.NoError(t, err)

	assert.Contains(t, out, `"Lunch on Friday?"`)
	assert.Contains(t, out, "Best regards,")
}

func TestGenerateCmd_TextFromFile(t *testing.T) {
	isolate(t)
	ts := newStub(t, stubserver.Config{})

	file := filepath.Join(t.TempDir(), "email.txt")
	require.NoError(t, os.WriteFile(file, []byte("Party on Saturday?\nAlex\n"), 0600))

	out, err := execute(t, "", "generate", "--endpoint", ts.URL, "--file", file, "--tone", "friendly")
	require.NoError(t, err)

	assert.Contains(t, out, "GENERATE REPLY")
	assert.Contains(t, out, "Hi Alex!")
	assert.Contains(t, out, "Reply ready")
}

func TestGenerateCmd_ServiceFailure(t *testing.T) {
	isolate(t)
	ts := newStub(t, stubserver.Config{
		FailStatus:  http.StatusServiceUnavailable,
		FailMessage: "Model overloaded",
	})

	out, err := execute(t, "Status update?", "generate", "--endpoint", ts.URL, "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Model overloaded")

	res := decodeResult(t, out)
	assert.Equal(t, "Failed", res.Phase)
	assert.Equal(t, "Model overloaded", res.Error)
	assert.Equal(t, http.StatusServiceUnavailable, res.Status)
	assert.Empty(t, res.Reply)
}

func TestGenerateCmd_FailureShowsTroubleshooting(t *testing.T) {
	isolate(t)
	ts := newStub(t, stubserver.Config{FailStatus: http.StatusBadRequest, FailMessage: "Email content required"})

	out, err := execute(t, "Hello", "generate", "--endpoint", ts.URL)
	require.Error(t, err)
	assert.Contains(t, out, "Reply generation failed")
	assert.Contains(t, out, "Email content required")
	assert.Contains(t, out, "Check the email content and tone")
}

func TestGenerateCmd_InputErrors(t *testing.T) {
	isolate(t)
	ts := newStub(t, stubserver.Config{})

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{"blank stdin", "  \n", []string{"generate"}, "no email content"},
		{"unknown tone", "Hi", []string{"generate", "--tone", "sarcastic"}, "sarcastic"},
		{"unknown format", "Hi", []string{"generate", "--format", "xml"}, "unknown format"},
		{"missing file", "", []string{"generate", "--file", "/nonexistent/email.txt"}, "failed to read email"},
		{"bad timeout", "Hi", []string{"generate", "--timeout", "soon"}, "invalid --timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--endpoint", ts.URL)
			_, err := execute(t, tt.stdin, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerateCmd_EndpointFromEnv(t *testing.T) {
	isolate(t)
	ts := newStub(t, stubserver.Config{Path: "/v2/reply"})
	t.Setenv(config.EnvEndpoint, ts.URL+"/v2/reply")
	t.Setenv(config.EnvTone, "casual")

	out, err := execute(t, "Coffee later?", "generate", "--format", "json")
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.Equal(t, ts.URL+"/v2/reply", res.Endpoint)
	assert.Equal(t, "casual", res.Tone)
	assert.Contains(t, res.Reply, "Cheers,")
}

func stubService(t *testing.T, rawURL string) *discovery.Service {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return &discovery.Service{
		Instance: "test-replies",
		IP:       host,
		Port:     port,
		Path:     discovery.DefaultPath,
	}
}

func TestGenerateCmd_Discovery(t *testing.T) {
	isolate(t)
	ts := newStub(t, stubserver.Config{})

	orig := findService
	t.Cleanup(func() { findService = orig })

	var gotTimeout time.Duration
	findService = func(ctx context.Context, timeout time.Duration) (*discovery.Service, error) {
		gotTimeout = timeout
		return stubService(t, ts.URL), nil
	}

	out, err := execute(t, "Hi", "generate", "--discover", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, ts.URL+discovery.DefaultPath, decodeResult(t, out).Endpoint)
	assert.Equal(t, time.Duration(config.DefaultDiscoveryTimeoutSeconds)*time.Second, gotTimeout)

	findService = func(ctx context.Context, timeout time.Duration) (*discovery.Service, error) {
		return nil, discovery.ErrNoService
	}
	_, err = execute(t, "Hi", "generate", "--discover")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discovery failed")
	assert.ErrorIs(t, err, discovery.ErrNoService)
}

func TestGenerateCmd_ExplicitEndpointSkipsDiscovery(t *testing.T) {
	isolate(t)
	ts := newStub(t, stubserver.Config{})

	orig := findService
	t.Cleanup(func() { findService = orig })
	findService = func(ctx context.Context, timeout time.Duration) (*discovery.Service, error) {
		t.Fatal("discovery should not run when an endpoint is given")
		return nil, nil
	}

	_, err := execute(t, "Hi", "generate", "--discover", "--endpoint", ts.URL, "--format", "plain")
	require.NoError(t, err)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")

	stored := config.Default()
	require.NoError(t, stored.SetEndpoint("http://file.example:9000"))
	require.NoError(t, stored.SetTone("formal"))
	require.NoError(t, stored.Save(path))

	configFlag = path
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://file.example:9000", cfg.Endpoint.BaseURL)
	assert.Equal(t, "formal", cfg.Defaults.Tone)

	t.Setenv(config.EnvTone, "casual")
	t.Setenv(config.EnvEndpoint, "http://env.example:9001")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://env.example:9001", cfg.Endpoint.BaseURL)
	assert.Equal(t, "casual", cfg.Defaults.Tone)

	endpointFlag = "https://flag.example/custom"
	timeoutFlag = "90"
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example", cfg.Endpoint.BaseURL)
	assert.Equal(t, "/custom", cfg.Endpoint.Path)
	assert.Equal(t, 90*time.Second, cfg.Timeout())
}

func TestNewClient(t *testing.T) {
	cfg := config.Default()
	cfg.Endpoint.TimeoutSeconds = 15
	cfg.Endpoint.Retries = 2

	client := newClient(cfg, "http://replies.local:8080", "v2/reply")
	assert.Equal(t, "http://replies.local:8080/v2/reply", client.Endpoint())
	assert.Equal(t, 15*time.Second, client.HTTPClient.Timeout)
	assert.Equal(t, 2, client.MaxRetries)
	assert.True(t, client.UseExponentialBackoff)
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "replies.yaml")

	out, err := execute(t, "", "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration created")
	assert.True(t, config.Exists(path))

	_, err = execute(t, "", "config", "set-endpoint", "https://replies.example.com/v2/reply", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "", "config", "set-tone", "casual", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "", "config", "set-timeout", "2m", "--config", path)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://replies.example.com", cfg.Endpoint.BaseURL)
	assert.Equal(t, "/v2/reply", cfg.Endpoint.Path)
	assert.Equal(t, "casual", cfg.Defaults.Tone)
	assert.Equal(t, 120, cfg.Endpoint.TimeoutSeconds)

	out, err = execute(t, "", "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "https://replies.example.com")
	assert.Contains(t, out, "casual")

	out, err = execute(t, "", "config", "path", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	_, err = execute(t, "", "config", "set-tone", "grumpy", "--config", path)
	require.Error(t, err)
	_, err = execute(t, "", "config", "set-endpoint", "ftp://nope", "--config", path)
	require.Error(t, err)
}

func TestConfigShow_Effective(t *testing.T) {
	isolate(t)
	t.Setenv(config.EnvTone, "friendly")

	out, err := execute(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "professional")

	out, err = execute(t, "", "config", "show", "--effective", "--timeout", "45s")
	require.NoError(t, err)
	assert.Contains(t, out, "friendly")
	assert.Contains(t, out, "timeout_seconds: 45")
}

func TestConfigInit_ExistingFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")

	_, err := execute(t, "", "config", "init", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "", "config", "set-tone", "casual", "--config", path)
	require.NoError(t, err)

	out, err := execute(t, "n\n", "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "casual", cfg.Defaults.Tone)

	_, err = execute(t, "y\n", "config", "init", "--config", path)
	require.NoError(t, err)
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "professional", cfg.Defaults.Tone)

	_, err = execute(t, "", "config", "set-tone", "casual", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "", "config", "init", "--force", "--config", path)
	require.NoError(t, err)
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "professional", cfg.Defaults.Tone)
}

func TestScanCmd(t *testing.T) {
	isolate(t)

	orig := scanServices
	t.Cleanup(func() { scanServices = orig })

	var gotTimeout time.Duration
	scanServices = func(ctx context.Context, timeout time.Duration) ([]*discovery.Service, error) {
		gotTimeout = timeout
		return []*discovery.Service{{
			Instance: "office-replies",
			Hostname: "replybox.local.",
			IP:       "192.168.1.20",
			Port:     8080,
			Path:     discovery.DefaultPath,
			Metadata: map[string]string{"version": "1.2.0", "path": discovery.DefaultPath},
		}}, nil
	}

	out, err := execute(t, "", "scan", "--timeout", "2")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, gotTimeout)
	assert.Contains(t, out, "Found 1 service(s)")
	assert.Contains(t, out, "http://192.168.1.20:8080/api/email/response")
	assert.Contains(t, out, "path=/api/email/response version=1.2.0")

	out, err = execute(t, "", "scan", "--format", "json")
	require.NoError(t, err)
	var entries []scanEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "office-replies", entries[0].Instance)
	assert.Equal(t, 5*time.Second, gotTimeout)
}

func TestScanCmd_NoServices(t *testing.T) {
	isolate(t)

	orig := scanServices
	t.Cleanup(func() { scanServices = orig })
	scanServices = func(ctx context.Context, timeout time.Duration) ([]*discovery.Service, error) {
		return nil, nil
	}

	out, err := execute(t, "", "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "No reply services found")

	_, err = execute(t, "", "scan", "--timeout", "0")
	require.Error(t, err)
}

func TestStubServerCmd_RejectsBadStatus(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "stub-server", "--fail-status", "200")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--fail-status")
}

func TestReadContent(t *testing.T) {
	got, err := readContent(strings.NewReader("from stdin"), "-", []string{"ignored"})
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readContent(strings.NewReader("from stdin"), "", []string{"from", "args"})
	require.NoError(t, err)
	assert.Equal(t, "from args", got)

	got, err = readContent(strings.NewReader("from stdin"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)
}
