package cli

import (
	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/actions"
	"stackit.dev/stk/internal/runtime"
)

// newTrackCmd creates the track command
func newTrackCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "track [branch]",
		Short: "Start tracking a branch with stk",
		Long: `Start tracking a branch with stk by recording its parent. Defaults to the
current branch and the trunk as parent. Tracking a tracked branch again
records the new parent without rebasing; use 'stk restack --onto' to move it.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts := actions.TrackOptions{Parent: parent}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.TrackAction(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "The tracked branch (or trunk) to record as parent.")
	_ = cmd.RegisterFlagCompletionFunc("parent", completeBranches)

	return cmd
}

// newUntrackCmd creates the untrack command
func newUntrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "untrack [branch]",
		Short: "Stop tracking a branch with stk",
		Long: `Stop tracking a branch with stk. Its children are moved onto its parent.
The git branch itself is left alone.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts := actions.UntrackOptions{}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.UntrackAction(ctx, opts)
			})
		},
	}

	return cmd
}
