package cli

import (
	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/actions"
	"stackit.dev/stk/internal/runtime"
)

// newModifyCmd creates the modify command
func newModifyCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "modify",
		Aliases: []string{"m"},
		Short:   "Amend the tip commit of the current branch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.ModifyAction(ctx, actions.ModifyOptions{All: all})
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Stage all changes before amending.")

	return cmd
}
