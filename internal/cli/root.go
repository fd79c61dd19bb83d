// Package cli wires the stk commands into cobra.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stk",
		Short: "stk keeps stacks of dependent branches consistent",
		Long: `stk keeps stacks of dependent branches consistent.

Each tracked branch records its parent. stk rebases branches onto their
parents, reconciles them with the remote and the pull request tracker, and
opens one pull request per branch based on its parent.

Commands stk does not know are passed through to git.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newInitCmd(),
		newCreateCmd(),
		newModifyCmd(),
		newCheckoutCmd(),
		newTrackCmd(),
		newUntrackCmd(),
		newParentCmd(),
		newChildrenCmd(),
		newLogCmd(),
		newRestackCmd(),
		newContinueCmd(),
		newAbortCmd(),
		newSyncCmd(),
		newSubmitCmd(),
	)

	return rootCmd
}
