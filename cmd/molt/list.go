// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"molt-cli/internal/catalog"
	"molt-cli/internal/config"
	"molt-cli/internal/modimage"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// listCmd prints the catalog without loading the module into a runtime
// context: only the metadata section is read, nothing is instantiated.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the commands in the library without invoking anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listCommands()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listCommands() error {
	path, err := config.ResolveLibraryPath(loadedCfg, libraryFile)
	if err != nil {
		return err
	}

	img, err := modimage.Load(path)
	if err != nil {
		return describeSessionError(path, err)
	}

	cat, err := catalog.Build(img)
	if err != nil {
		return describeSessionError(path, err)
	}

	if len(cat) == 0 {
		fmt.Println(SubtitleStyle.Render(fmt.Sprintf("no commands found in %s", path)))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtitleStyle).
		Headers(catalog.Headers()...).
		Rows(cat.Rows()...)

	fmt.Println(TitleStyle.Render(fmt.Sprintf("%d command(s) in %s", len(cat), path)))
	fmt.Println(t)
	return nil
}
