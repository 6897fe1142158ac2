// Package config provides user configuration management for emailreply.
//
// The configuration is a small YAML file naming the reply-generation
// endpoint, the default tone and whether to look the service up over mDNS.
// The file follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/emailreply/config.yaml or $HOME/.config/emailreply/config.yaml
//   - macOS: $HOME/.config/emailreply/config.yaml
//   - Windows: %LOCALAPPDATA%\emailreply\config.yaml
//
// # Precedence
//
// Values are resolved in this order, highest first:
//
//  1. command-line flags (applied by the caller)
//  2. EMAILREPLY_* environment variables (ApplyEnv)
//  3. a .env file in the working directory (LoadDotEnv, never overrides
//     variables that are already set)
//  4. the config file (Load)
//  5. Default()
//
// # Usage Example
//
//	if err := config.LoadDotEnv(); err != nil {
//	    return err
//	}
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.ApplyEnv(); err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// Save writes atomically through a temporary file and rename.
package config
