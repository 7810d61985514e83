// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// rerunCmd is shorthand for `molt run --last`.
var rerunCmd = &cobra.Command{
	Use:   "rerun",
	Short: "Repeat the most recent invocation",
	Long: `Repeat the most recently invoked command without prompting.

The library is loaded fresh from disk, so a rebuild since the last run
is picked up. If the recorded command no longer exists in the rebuilt
library, rerun fails with a dispatch error instead of guessing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(true)
	},
}

func init() {
	rootCmd.AddCommand(rerunCmd)
}
