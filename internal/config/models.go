package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/emailreply/internal/form"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

// Default values for a fresh configuration
const (
	DefaultBaseURL                 = "http://localhost:8080"
	DefaultPath                    = "/api/email/response"
	DefaultTimeoutSeconds          = 60
	DefaultDiscoveryTimeoutSeconds = 5
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the entire user configuration file.
type Config struct {
	Version   int       `yaml:"version"`
	Endpoint  Endpoint  `yaml:"endpoint"`
	Defaults  Defaults  `yaml:"defaults"`
	Discovery Discovery `yaml:"discovery"`
}

// Endpoint describes where replies are generated.
type Endpoint struct {
	BaseURL        string `yaml:"base_url"`        // Scheme and host, e.g. "http://localhost:8080"
	Path           string `yaml:"path"`            // Request path, e.g. "/api/email/response"
	TimeoutSeconds int    `yaml:"timeout_seconds"` // Per-request timeout
	Retries        int    `yaml:"retries"`         // Client retries for retryable failures
}

// Defaults holds the initial form values.
type Defaults struct {
	Tone string `yaml:"tone"` // One of formal, professional, casual, friendly
}

// Discovery controls mDNS lookup of the reply service.
type Discovery struct {
	Enabled        bool `yaml:"enabled"`         // Browse for a service when no endpoint is given
	TimeoutSeconds int  `yaml:"timeout_seconds"` // Browse duration
}

// Default creates a Config with default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Endpoint: Endpoint{
			BaseURL:        DefaultBaseURL,
			Path:           DefaultPath,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Defaults: Defaults{
			Tone: form.DefaultTone.String(),
		},
		Discovery: Discovery{
			TimeoutSeconds: DefaultDiscoveryTimeoutSeconds,
		},
	}
}

// fillDefaults replaces zero values left by a partial file
func (c *Config) fillDefaults() {
	d := Default()
	if c.Endpoint.BaseURL == "" {
		c.Endpoint.BaseURL = d.Endpoint.BaseURL
	}
	if c.Endpoint.Path == "" {
		c.Endpoint.Path = d.Endpoint.Path
	}
	if c.Endpoint.TimeoutSeconds == 0 {
		c.Endpoint.TimeoutSeconds = d.Endpoint.TimeoutSeconds
	}
	if c.Defaults.Tone == "" {
		c.Defaults.Tone = d.Defaults.Tone
	}
	if c.Discovery.TimeoutSeconds == 0 {
		c.Discovery.TimeoutSeconds = d.Discovery.TimeoutSeconds
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Endpoint.TimeoutSeconds) * time.Second
}

// DiscoveryTimeout returns the mDNS browse duration.
func (c *Config) DiscoveryTimeout() time.Duration {
	return time.Duration(c.Discovery.TimeoutSeconds) * time.Second
}

// Tone returns the configured default tone, or form.DefaultTone when the
// stored value is not recognised.
func (c *Config) Tone() form.Tone {
	tone, err := form.ParseTone(c.Defaults.Tone)
	if err != nil {
		return form.DefaultTone
	}
	return tone
}

// SetEndpoint validates raw and stores it as the base URL. A path in raw
// other than "/" replaces the request path.
func (c *Config) SetEndpoint(raw string) error {
	u, err := parseBaseURL(raw)
	if err != nil {
		return err
	}
	if p := strings.TrimRight(u.Path, "/"); p != "" {
		c.Endpoint.Path = p
	}
	u.Path, u.RawPath, u.RawQuery, u.Fragment = "", "", "", ""
	c.Endpoint.BaseURL = u.String()
	return nil
}

// SetTone validates and stores the default tone.
func (c *Config) SetTone(raw string) error {
	tone, err := form.ParseTone(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Defaults.Tone = tone.String()
	return nil
}

// SetTimeout stores a request timeout, rounded up to whole seconds.
func (c *Config) SetTimeout(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, d)
	}
	c.Endpoint.TimeoutSeconds = int((d + time.Second - 1) / time.Second)
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported config version %d (expected %d)", ErrInvalidConfig, c.Version, CurrentVersion)
	}
	if _, err := parseBaseURL(c.Endpoint.BaseURL); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Endpoint.Path, "/") {
		return fmt.Errorf("%w: endpoint path %q must start with /", ErrInvalidConfig, c.Endpoint.Path)
	}
	if c.Endpoint.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: endpoint timeout must be positive", ErrInvalidConfig)
	}
	if c.Endpoint.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", ErrInvalidConfig)
	}
	if _, err := form.ParseTone(c.Defaults.Tone); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Discovery.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: discovery timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// parseBaseURL accepts absolute http(s) URLs with a host
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint %q: %w", ErrInvalidConfig, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: endpoint %q must use http or https", ErrInvalidConfig, raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: endpoint %q has no host", ErrInvalidConfig, raw)
	}
	return u, nil
}
