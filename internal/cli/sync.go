package cli

import (
	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/actions/sync"
	"stackit.dev/stk/internal/runtime"
)

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the trunk and every tracked branch with the remote, and clean up merged branches",
		Long: `Sync the trunk and every tracked branch with the remote, and clean up merged branches.

Fetches with pruning, fast-forwards the trunk and every tracked branch that is
only behind its remote, and offers to delete branches whose pull request was
merged or closed. Children of a deleted branch move onto its parent. Branches
that diverged from their remote are reported and left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				return runSync(ctx, sync.Options{Force: force})
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete merged and closed branches without asking.")

	return cmd
}

// runSync treats per-branch failures as warnings; only trunk and registry
// failures end the command with an error.
func runSync(ctx *runtime.Context, opts sync.Options) error {
	result, err := sync.Action(ctx, opts)
	if err != nil {
		return err
	}
	if n := len(result.Failures); n > 0 {
		noun := "branches"
		if n == 1 {
			noun = "branch"
		}
		ctx.Splog.Warn("%d %s could not be synced.", n, noun)
	}
	return nil
}
