// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"molt-cli/internal/issue"
	"molt-cli/pkg/types"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "molt"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"

	// LibraryEnvVar overrides the command library path when set.
	LibraryEnvVar = "MOLT_LIBRARY"
	// DefaultLibraryFileName is the command library file looked up under
	// the config directory's lib/ folder when nothing else is configured.
	DefaultLibraryFileName = "cmdlib.wasm"
)

type (
	// Config is the complete molt configuration.
	Config struct {
		// LibraryPath points at the command library module. Environment
		// variables in the value are expanded at resolution time.
		LibraryPath string `mapstructure:"library_path" toml:"library_path"`
		UI          UI     `mapstructure:"ui" toml:"ui"`
	}

	// UI holds presentation settings.
	UI struct {
		ColorScheme string `mapstructure:"color_scheme" toml:"color_scheme"`
		Verbose     bool   `mapstructure:"verbose" toml:"verbose"`
	}

	// LoadOptions controls how configuration is resolved.
	LoadOptions struct {
		// ConfigFilePath, when set (via --config), is used exclusively.
		ConfigFilePath string
		// ConfigDirPath overrides the platform config directory.
		ConfigDirPath string
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		UI: UI{
			ColorScheme: "auto",
			Verbose:     false,
		},
	}
}

// ConfigDir returns the molt configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application
// Support, and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load resolves configuration from defaults, then the config file (explicit
// path, platform config directory, or current directory, in that order).
// A missing config file is not an error; defaults apply.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	v.SetConfigType(ConfigFileExt)

	defaults := DefaultConfig()
	v.SetDefault("library_path", defaults.LibraryPath)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	resolvedPath := ""

	// If a custom config file path is set via --config, use it exclusively.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'molt config show' to see default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := readFileIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", configParseError(opts.ConfigFilePath, err)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(cfgPath) {
			if err := readFileIntoViper(v, cfgPath); err != nil {
				return nil, "", configParseError(cfgPath, err)
			}
			resolvedPath = cfgPath
		} else {
			// Also check current directory
			localPath := ConfigFileName + "." + ConfigFileExt
			if fileExists(localPath) {
				if err := readFileIntoViper(v, localPath); err != nil {
					return nil, "", configParseError(localPath, err)
				}
				resolvedPath = localPath
			}
			// If no config file found, use defaults (no error)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, resolvedPath, nil
}

// ResolveLibraryPath returns the command library module path using the
// precedence chain: explicit flag value, MOLT_LIBRARY environment variable,
// the configured library_path, then <config-dir>/lib/cmdlib.wasm.
// Environment variables inside configured values are expanded, and the
// result is validated and made absolute.
func ResolveLibraryPath(cfg *Config, flagValue string) (string, error) {
	var raw string
	switch {
	case flagValue != "":
		raw = os.ExpandEnv(flagValue)
	case os.Getenv(LibraryEnvVar) != "":
		raw = os.ExpandEnv(os.Getenv(LibraryEnvVar))
	case cfg != nil && cfg.LibraryPath != "":
		raw = os.ExpandEnv(cfg.LibraryPath)
	default:
		cfgDir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		raw = filepath.Join(cfgDir, "lib", DefaultLibraryFileName)
	}

	path, err := types.FilesystemPath(raw).Abs()
	if err != nil {
		return "", fmt.Errorf("resolve library path: %w", err)
	}
	return path.String(), nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// configParseError wraps a config file read failure with actionable guidance.
func configParseError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid TOML syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("See 'molt config --help' for configuration options").
		Wrap(err).
		BuildError()
}

// readFileIntoViper reads a TOML config file and merges it into Viper.
func readFileIntoViper(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	return v.MergeConfig(f)
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(cfgDir, 0o755)
}

// CreateDefaultConfig creates a default config file if it doesn't exist
func CreateDefaultConfig() error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		return nil // File exists
	}

	return Save(DefaultConfig())
}

// Save writes the configuration to the config file as TOML.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}

	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
