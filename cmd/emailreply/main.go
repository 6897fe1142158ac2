// Emailreply drafts replies to emails through a reply-generation service.
//
// Paste or pipe an email, pick a tone (formal, professional, casual or
// friendly) and the service returns a reply that can be copied to the
// clipboard.
//
// Usage:
//
//	emailreply [command] [flags]
//
// Running without arguments opens the interactive form.
// See 'emailreply --help' for available commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/emailreply/internal/logging"
	"github.com/muurk/emailreply/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "emailreply",
	Short: "Generate email replies from the terminal",
	Long: `Generate replies to emails using a reply-generation service.

Paste an email, choose a tone and submit; the generated reply can be
copied straight to the clipboard.

If no command is specified, the interactive form will launch automatically.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initLogging,
	RunE:              runInteractive,
}

// Global flags
var (
	endpointFlag string
	configFlag   string
	timeoutFlag  string
	discoverFlag bool
	logLevel     string
	logFile      string
)

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&endpointFlag, "endpoint", "", "Reply service URL, optionally with path (default from config)")
	pf.StringVar(&configFlag, "config", "", "Config file path (default $XDG_CONFIG_HOME/emailreply/config.yaml)")
	pf.StringVar(&timeoutFlag, "timeout", "", "Request timeout, e.g. 45s or 90 (seconds)")
	pf.BoolVar(&discoverFlag, "discover", false, "Find the reply service via mDNS when no endpoint is given")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	pf.StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(versionCmd)
}

// initLogging runs before every command
func initLogging(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel, logFile); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFormat == "json" {
			data, err := json.MarshalIndent(version.Get(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "emailreply %s\n", version.Full())
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "text", "Output format (text, json)")
}
