package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/emailreply/internal/form"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "emailreply") {
		t.Errorf("GetConfigDir() = %v, should contain 'emailreply'", configDir)
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honoured on Linux")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir != filepath.Join(xdg, "emailreply") {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, filepath.Join(xdg, "emailreply"))
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Version != 1 {
		t.Errorf("Version = %v, want 1", cfg.Version)
	}
	if cfg.Endpoint.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %v", cfg.Endpoint.BaseURL)
	}
	if cfg.Endpoint.Path != "/api/email/response" {
		t.Errorf("Path = %v", cfg.Endpoint.Path)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("Timeout() = %v, want 60s", cfg.Timeout())
	}
	if cfg.Tone() != form.ToneProfessional {
		t.Errorf("Tone() = %v, want professional", cfg.Tone())
	}
	if cfg.Discovery.Enabled {
		t.Error("discovery should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Endpoint.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %v, want default", cfg.Endpoint.BaseURL)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	if err := cfg.SetEndpoint("https://replies.example.com"); err != nil {
		t.Fatalf("SetEndpoint() error = %v", err)
	}
	if err := cfg.SetTone("casual"); err != nil {
		t.Fatalf("SetTone() error = %v", err)
	}
	cfg.Endpoint.Retries = 2
	cfg.Discovery.Enabled = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Endpoint.BaseURL != "https://replies.example.com" {
		t.Errorf("BaseURL = %v", loaded.Endpoint.BaseURL)
	}
	if loaded.Tone() != form.ToneCasual {
		t.Errorf("Tone() = %v, want casual", loaded.Tone())
	}
	if loaded.Endpoint.Retries != 2 {
		t.Errorf("Retries = %v, want 2", loaded.Endpoint.Retries)
	}
	if !loaded.Discovery.Enabled {
		t.Error("Discovery.Enabled should round-trip")
	}
	if !Exists(path) {
		t.Error("Exists() = false after Save")
	}
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "version: 1\nendpoint:\n  base_url: http://10.0.0.5:9000\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Endpoint.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("BaseURL = %v", cfg.Endpoint.BaseURL)
	}
	if cfg.Endpoint.Path != DefaultPath {
		t.Errorf("Path = %v, want default", cfg.Endpoint.Path)
	}
	if cfg.Endpoint.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("TimeoutSeconds = %v, want default", cfg.Endpoint.TimeoutSeconds)
	}
	if cfg.Defaults.Tone != "professional" {
		t.Errorf("Tone = %v, want professional", cfg.Defaults.Tone)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "version: [1\n"},
		{name: "wrong version", content: "version: 2\n"},
		{name: "missing version", content: "defaults:\n  tone: casual\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}
