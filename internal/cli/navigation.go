package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/actions"
	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// newParentCmd creates the parent command
func newParentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parent",
		Short: "Show the parent of the current branch",
		Long: `Show the parent of the current branch.

Prints the branch the current branch is stacked on. A tracked branch with no
recorded parent is based on the trunk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				current, err := currentBranch(ctx)
				if err != nil {
					return err
				}
				if ctx.Registry.IsTrunk(current) {
					ctx.Splog.Info("%s is the trunk and has no parent.", style.ColorBranchName(current, true))
					return nil
				}
				tracked, err := ctx.Registry.IsTracked(ctx.Context, current)
				if err != nil {
					return err
				}
				if !tracked {
					return fmt.Errorf("branch %s is not tracked", current)
				}
				parent, err := ctx.Registry.ParentOrTrunk(ctx.Context, current)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), parent)
				return nil
			})
		},
	}

	return cmd
}

// newChildrenCmd creates the children command
func newChildrenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "children",
		Short: "Show the children of the current branch",
		Long: `Show the children of the current branch.

Lists all branches that have the current branch as their parent in the stack.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				current, err := currentBranch(ctx)
				if err != nil {
					return err
				}
				children, err := ctx.Registry.Children(ctx.Context, current)
				if err != nil {
					return err
				}
				if len(children) == 0 {
					ctx.Splog.Info("%s has no children.", style.ColorBranchName(current, true))
					return nil
				}
				for _, child := range children {
					fmt.Fprintln(cmd.OutOrStdout(), child)
				}
				return nil
			})
		},
	}

	return cmd
}

// newLogCmd creates the log command
func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "log",
		Aliases: []string{"l"},
		Short:   "Show the tree of tracked branches",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				out, err := actions.LogAction(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	return cmd
}

func currentBranch(ctx *runtime.Context) (string, error) {
	current, err := ctx.Repo.CurrentBranch(ctx.Context)
	if err != nil {
		return "", err
	}
	if current == "" {
		return "", stkerrors.ErrNotOnBranch
	}
	return current, nil
}
