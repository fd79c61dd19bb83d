package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/actions/restack"
	"stackit.dev/stk/internal/runtime"
)

// newRestackCmd creates the restack command
func newRestackCmd() *cobra.Command {
	var (
		branch    string
		onto      string
		cascade   bool
		noCascade bool
	)

	cmd := &cobra.Command{
		Use:   "restack",
		Short: "Rebase a branch onto its parent, optionally moving it onto a new parent first",
		Long: `Rebase a branch onto its parent, optionally moving it onto a new parent first.

With --onto, the branch's parent is changed before rebasing. When the branch
has descendants, you are asked whether to restack them as well; --cascade and
--no-cascade answer up front. If a conflict is hit, resolve it and run
'stk continue', or 'stk abort' to give up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cascade && noCascade {
				return fmt.Errorf("only one of --cascade or --no-cascade can be specified")
			}
			return run(cmd, func(ctx *runtime.Context) error {
				opts := restack.Options{BranchName: branch, Onto: onto}
				switch {
				case cascade:
					opts.Cascade = &cascade
				case noCascade:
					no := false
					opts.Cascade = &no
				}
				_, err := restack.Action(ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "Which branch to restack. Defaults to the current branch.")
	cmd.Flags().StringVar(&onto, "onto", "", "Move the branch onto this parent before rebasing.")
	cmd.Flags().BoolVar(&cascade, "cascade", false, "Restack every descendant without asking.")
	cmd.Flags().BoolVar(&noCascade, "no-cascade", false, "Restack only this branch.")
	_ = cmd.RegisterFlagCompletionFunc("branch", completeBranches)
	_ = cmd.RegisterFlagCompletionFunc("onto", completeBranches)

	return cmd
}

// newContinueCmd creates the continue command
func newContinueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Continue a restack stopped by a rebase conflict",
		Long: `Continue a restack stopped by a rebase conflict.

Resolve the conflicts and stage the files with 'git add' first. The rebase is
continued and the remaining descendants are restacked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				_, err := restack.Continue(ctx)
				return err
			})
		},
	}

	return cmd
}

// newAbortCmd creates the abort command
func newAbortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Abort a restack stopped by a rebase conflict",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, restack.Abort)
		},
	}

	return cmd
}
