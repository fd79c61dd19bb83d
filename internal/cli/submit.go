package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/actions/submit"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// newSubmitCmd creates the submit command
func newSubmitCmd() *cobra.Command {
	var (
		branch     string
		stack      bool
		regenerate bool
		draft      bool
	)

	cmd := &cobra.Command{
		Use:     "submit",
		Aliases: []string{"s"},
		Short:   "Push a branch and open a pull request for it, based on its parent",
		Long: `Push a branch and open a pull request for it, based on its parent.

With --stack, every branch from the bottom of the stack up to the current one
is submitted. Existing pull requests are reused; --regenerate-description
offers to rewrite their bodies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts := submit.Options{
					BranchName:            branch,
					RegenerateDescription: regenerate,
					Draft:                 draft,
				}
				if stack {
					opts.Scope = submit.ScopeFullStack
				}
				result, err := submit.Action(ctx, opts)
				if err != nil {
					return err
				}
				for _, item := range result.Items {
					if item.PullRequest == nil {
						continue
					}
					ctx.Splog.Info("%s: %s (%s)", style.ColorBranchName(item.BranchName, false),
						style.FormatPullRequest(item.PullRequest.Number, item.PullRequest.URL), item.Action)
				}
				if failed := result.Failed(); len(failed) > 0 {
					return fmt.Errorf("%d branch(es) could not be submitted", len(failed))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "Which branch to submit. Defaults to the current branch.")
	cmd.Flags().BoolVarP(&stack, "stack", "s", false, "Submit every ancestor of the branch as well.")
	cmd.Flags().BoolVar(&regenerate, "regenerate-description", false, "Offer to regenerate the description of existing pull requests.")
	cmd.Flags().BoolVarP(&draft, "draft", "d", false, "Open new pull requests as drafts.")
	_ = cmd.RegisterFlagCompletionFunc("branch", completeBranches)

	return cmd
}
