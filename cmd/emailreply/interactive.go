package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/emailreply/internal/clipboard"
	"github.com/muurk/emailreply/internal/discovery"
	"github.com/muurk/emailreply/internal/form"
	"github.com/muurk/emailreply/internal/logging"
	"github.com/muurk/emailreply/internal/tui"
	"github.com/muurk/emailreply/internal/ui"
)

var errNoTerminal = errors.New("the interactive form needs a terminal; use 'emailreply generate' to pipe an email instead")

// runInteractive opens the form, starting on the service picker when
// discovery is enabled and no endpoint was given
func runInteractive(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal(os.Stdin) || !ui.IsTerminal(os.Stdout) {
		return errNoTerminal
	}

	// The form owns the screen; keep log output off it
	if logFile == "" && os.Getenv(logging.LogFileEnvVar) == "" {
		logging.SetLogger(zap.NewNop())
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !clipboard.Available() {
		logging.Warn("System clipboard unavailable, copy will fail")
	}

	factory := func(baseURL, path string) *form.Controller {
		return newController(cfg, newClient(cfg, baseURL, path), clipboard.System{})
	}

	opts := tui.Options{
		Ctx:         cmd.Context(),
		Factory:     factory,
		Scan:        discovery.Scan,
		ScanTimeout: cfg.DiscoveryTimeout(),
	}
	if useDiscovery(cfg) {
		opts.Discover = true
	} else {
		client := newClient(cfg, cfg.Endpoint.BaseURL, cfg.Endpoint.Path)
		opts.Controller = newController(cfg, client, clipboard.System{})
		opts.Endpoint = client.Endpoint()
	}

	logging.Info("Starting interactive form",
		zap.Bool("discover", opts.Discover),
		zap.String("endpoint", opts.Endpoint))

	if err := tui.Run(opts); err != nil {
		return fmt.Errorf("interactive form error: %w", err)
	}
	return nil
}
