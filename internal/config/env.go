package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvEndpoint = "EMAILREPLY_ENDPOINT"
	EnvPath     = "EMAILREPLY_PATH"
	EnvTone     = "EMAILREPLY_TONE"
	EnvTimeout  = "EMAILREPLY_TIMEOUT"
	EnvDiscover = "EMAILREPLY_DISCOVER"
)

// DotEnvFile is the file LoadDotEnv reads when no path is given
const DotEnvFile = ".env"

// LoadDotEnv loads variables from a .env file into the process
// environment. Variables already set are left untouched and a missing
// file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DotEnvFile}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// ApplyEnv overlays EMAILREPLY_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup(EnvEndpoint); ok {
		if err := c.SetEndpoint(v); err != nil {
			return fmt.Errorf("%s: %w", EnvEndpoint, err)
		}
	}

	if v, ok := lookup(EnvPath); ok {
		if !strings.HasPrefix(v, "/") {
			v = "/" + v
		}
		c.Endpoint.Path = v
	}

	if v, ok := lookup(EnvTone); ok {
		if err := c.SetTone(v); err != nil {
			return fmt.Errorf("%s: %w", EnvTone, err)
		}
	}

	if v, ok := lookup(EnvTimeout); ok {
		d, err := ParseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		if err := c.SetTimeout(d); err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
	}

	if v, ok := lookup(EnvDiscover); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w: %q is not a boolean", EnvDiscover, ErrInvalidConfig, v)
		}
		c.Discovery.Enabled = enabled
	}

	return nil
}

// ParseTimeout accepts a Go duration ("45s", "2m") or a bare number of seconds.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid timeout %q", ErrInvalidConfig, s)
	}
	return d, nil
}

// lookup returns a non-blank environment variable
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
