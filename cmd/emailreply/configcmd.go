package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/emailreply/internal/config"
	"github.com/muurk/emailreply/internal/ui"
)

var (
	configForce     bool
	configEffective bool
)

// configCmd groups the config file subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Create, inspect and edit the emailreply configuration file.

Values in the file are the lowest-priority settings: a .env file, the
EMAILREPLY_* environment variables and command-line flags override them.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration",
	Example: `  # The file as stored
  emailreply config show

  # After .env, environment and flags are applied
  emailreply config show --effective --timeout 90`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configSetEndpointCmd = &cobra.Command{
	Use:     "set-endpoint <url>",
	Short:   "Set the reply service URL",
	Example: "  emailreply config set-endpoint https://replies.example.com/api/email/response",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateConfig(cmd, "Endpoint updated", func(cfg *config.Config) error {
			return cfg.SetEndpoint(args[0])
		})
	},
}

var configSetToneCmd = &cobra.Command{
	Use:   "set-tone <tone>",
	Short: "Set the default tone (formal, professional, casual, friendly)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateConfig(cmd, "Default tone updated", func(cfg *config.Config) error {
			return cfg.SetTone(args[0])
		})
	},
}

var configSetTimeoutCmd = &cobra.Command{
	Use:     "set-timeout <duration>",
	Short:   "Set the request timeout",
	Example: "  emailreply config set-timeout 90s",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateConfig(cmd, "Timeout updated", func(cfg *config.Config) error {
			d, err := config.ParseTimeout(args[0])
			if err != nil {
				return err
			}
			return cfg.SetTimeout(d)
		})
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configEffective, "effective", false, "Apply .env, environment and flags before printing")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file without asking")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetEndpointCmd)
	configCmd.AddCommand(configSetToneCmd)
	configCmd.AddCommand(configSetTimeoutCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// configPath returns --config or the default location
func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return config.GetConfigPath()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if configEffective {
		cfg, err = loadConfig()
	} else {
		cfg, err = config.Load(configFlag)
	}
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if config.Exists(configFlag) && !configForce {
		ok := ui.Confirm(cmd.InOrStdin(), out, "Configuration file exists",
			"Overwrite it with default values?",
			ui.Detail{Key: "Path", Value: path},
		)
		if !ok {
			fmt.Fprintln(out, "Aborted, configuration unchanged")
			return nil
		}
	}

	cfg := config.Default()
	if err := cfg.Save(configFlag); err != nil {
		return err
	}

	ui.NewPrinter(out).PrintSuccess("Configuration created",
		ui.Detail{Key: "Path", Value: path},
		ui.Detail{Key: "Endpoint", Value: cfg.Endpoint.BaseURL + cfg.Endpoint.Path},
		ui.Detail{Key: "Tone", Value: cfg.Tone().Label()},
	)
	return nil
}

// updateConfig loads the stored file, applies change and saves it
func updateConfig(cmd *cobra.Command, title string, change func(*config.Config) error) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	if err := change(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(configFlag); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess(title,
		ui.Detail{Key: "Path", Value: path},
		ui.Detail{Key: "Endpoint", Value: cfg.Endpoint.BaseURL + cfg.Endpoint.Path},
		ui.Detail{Key: "Tone", Value: cfg.Tone().Label()},
		ui.Detail{Key: "Timeout", Value: seconds(cfg.Timeout())},
	)
	return nil
}
