package cli

import (
	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/actions"
	"stackit.dev/stk/internal/runtime"
)

// newCheckoutCmd creates the checkout command
func newCheckoutCmd() *cobra.Command {
	var trunk bool

	cmd := &cobra.Command{
		Use:     "checkout [branch]",
		Aliases: []string{"co"},
		Short:   "Switch to a branch. If no branch is provided, opens an interactive selector.",
		Long: `Switch to a branch. If no branch is provided, opens an interactive selector.

A branch that is not yet tracked is tracked with the previously checked-out
branch as its parent.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts := actions.CheckoutOptions{Trunk: trunk}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				_, err := actions.CheckoutAction(ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&trunk, "trunk", "t", false, "Checkout the trunk.")

	return cmd
}
