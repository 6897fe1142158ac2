package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/emailreply/internal/config"
	"github.com/muurk/emailreply/internal/discovery"
	"github.com/muurk/emailreply/internal/form"
	"github.com/muurk/emailreply/internal/logging"
	"github.com/muurk/emailreply/internal/replyapi"
)

// findService is swapped out in tests
var findService = discovery.FindFirst

// loadConfig resolves settings in order: config file, .env, environment,
// then flags set on the command line.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if endpointFlag != "" {
		if err := cfg.SetEndpoint(endpointFlag); err != nil {
			return nil, fmt.Errorf("invalid --endpoint: %w", err)
		}
	}
	if timeoutFlag != "" {
		d, err := config.ParseTimeout(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout: %w", err)
		}
		if err := cfg.SetTimeout(d); err != nil {
			return nil, fmt.Errorf("invalid --timeout: %w", err)
		}
	}
	if discoverFlag {
		cfg.Discovery.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// explicitEndpoint reports whether the endpoint was given on the command
// line or in the environment, which takes priority over discovery
func explicitEndpoint() bool {
	return endpointFlag != "" || os.Getenv(config.EnvEndpoint) != ""
}

// useDiscovery reports whether the endpoint should come from mDNS
func useDiscovery(cfg *config.Config) bool {
	return cfg.Discovery.Enabled && !explicitEndpoint()
}

// resolveEndpoint returns the base URL and path to post to, browsing for
// a service first when discovery is enabled
func resolveEndpoint(ctx context.Context, cfg *config.Config) (string, string, error) {
	if !useDiscovery(cfg) {
		return cfg.Endpoint.BaseURL, cfg.Endpoint.Path, nil
	}

	logging.Debug("No endpoint specified, attempting discovery",
		zap.Duration("timeout", cfg.DiscoveryTimeout()))

	svc, err := findService(ctx, cfg.DiscoveryTimeout())
	if err != nil {
		return "", "", fmt.Errorf("discovery failed: %w. Use --endpoint to set the service URL", err)
	}

	logging.Info("Discovered reply service",
		zap.String("instance", svc.Instance),
		zap.String("endpoint", svc.Endpoint()))
	return svc.BaseURL(), svc.Path, nil
}

// newClient builds a reply service client from the settings
func newClient(cfg *config.Config, baseURL, path string) *replyapi.Client {
	client := replyapi.NewClient(baseURL)
	client.SetPath(path)
	client.SetTimeout(cfg.Timeout())
	if cfg.Endpoint.Retries > 0 {
		client.SetRetry(cfg.Endpoint.Retries, replyapi.DefaultRetryDelay)
		client.UseExponentialBackoff = true
	}
	return client
}

// newController builds a form session around gen
func newController(cfg *config.Config, gen form.Generator, cb form.Clipboard) *form.Controller {
	opts := []form.Option{
		form.WithDefaultTone(cfg.Tone()),
		form.WithLogger(logging.GetLogger()),
	}
	if cb != nil {
		opts = append(opts, form.WithClipboard(cb))
	}
	return form.New(gen, opts...)
}

// seconds formats a timeout for display
func seconds(d time.Duration) string {
	return fmt.Sprintf("%ds", int(d/time.Second))
}
