// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed docs_manifest.md
var manifestDoc string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Reference documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	docsCmd.AddCommand(&cobra.Command{
		Use:   "manifest",
		Short: "Explain the command library metadata format",
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderDoc(manifestDoc)
		},
	})

	rootCmd.AddCommand(docsCmd)
}

// renderDoc renders embedded markdown for the terminal.
func renderDoc(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to build doc renderer: %w", err)
	}

	out, err := r.Render(content)
	if err != nil {
		return fmt.Errorf("failed to render documentation: %w", err)
	}

	fmt.Print(out)
	return nil
}
