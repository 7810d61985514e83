// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"molt-cli/internal/config"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// configCmd is the `molt config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage molt configuration",
	Long: `Manage molt configuration.

Configuration is stored in:
  - Linux: ~/.config/molt/config.toml
  - macOS: ~/Library/Application Support/molt/config.toml
  - Windows: %APPDATA%\molt\config.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.CreateDefaultConfig()
		},
	})

	rootCmd.AddCommand(configCmd)
}

func showConfig() error {
	content, err := toml.Marshal(loadedCfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	libraryPath, err := config.ResolveLibraryPath(loadedCfg, libraryFile)
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render("Current configuration"))
	fmt.Print(string(content))
	fmt.Println(SubtitleStyle.Render("resolved library: ") + CmdStyle.Render(libraryPath))
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Println(filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}
