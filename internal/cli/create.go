package cli

import (
	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/actions"
	"stackit.dev/stk/internal/runtime"
)

// newCreateCmd creates the create command
func newCreateCmd() *cobra.Command {
	var (
		all     bool
		message string
	)

	cmd := &cobra.Command{
		Use:     "create [name]",
		Aliases: []string{"c"},
		Short:   "Create a new branch stacked on top of the current branch",
		Long: `Create a new branch stacked on top of the current branch and track it with
the current branch as its parent. With --message, staged changes are
committed on the new branch, and the branch name may be omitted to derive it
from the message.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts := actions.CreateOptions{Message: message, All: all}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.CreateAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Stage all changes before committing.")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit staged changes on the new branch with this message.")

	return cmd
}
