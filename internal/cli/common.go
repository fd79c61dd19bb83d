package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui"
)

// run provides an initialized runtime context to a command's execution
// function. Output follows the command's writer so tests can capture it.
func run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	ctx, err := runtime.GetContext(cmd.Context())
	if err != nil {
		return err
	}
	redirectOutput(cmd, ctx)
	defer func() { _ = ctx.Close() }()
	return fn(ctx)
}

func redirectOutput(cmd *cobra.Command, ctx *runtime.Context) {
	if out := cmd.OutOrStdout(); out != os.Stdout {
		_ = ctx.Splog.Close()
		ctx.Splog = tui.NewSplogWithWriter(out)
	}
}

// completeBranches is a cobra.ValidArgsFunction returning every local branch
func completeBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	ctx, err := runtime.Open(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer func() { _ = ctx.Close() }()

	lister, ok := ctx.Repo.(interface {
		LocalBranches(ctx context.Context) ([]string, error)
	})
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	branches, err := lister.LocalBranches(ctx.Context)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return branches, cobra.ShellCompDirectiveNoFileComp
}
