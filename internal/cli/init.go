package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/config"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// commonTrunkNames are tried in order when --trunk is not given
var commonTrunkNames = []string{"main", "master", "development", "develop"}

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	var trunk string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize stk in the current repository",
		Long: `Initialize stk in the current repository.

Records the trunk branch that stacks are based on. Without --trunk, the first
existing branch among main, master, development and develop is used, falling
back to the current branch. Running init again changes the trunk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.Open(cmd.Context())
			if err != nil {
				return err
			}
			redirectOutput(cmd, ctx)
			defer func() { _ = ctx.Close() }()

			if trunk == "" {
				if trunk, err = inferTrunk(ctx); err != nil {
					return err
				}
			}
			exists, err := ctx.Repo.BranchExists(ctx.Context, trunk)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("trunk branch %s does not exist", trunk)
			}
			if err := config.SetTrunk(ctx.GitDir, trunk); err != nil {
				return err
			}
			ctx.Splog.Info("Initialized stk with trunk %s.", style.ColorBranchName(trunk, false))
			return nil
		},
	}

	cmd.Flags().StringVar(&trunk, "trunk", "", "The name of your trunk branch.")
	_ = cmd.RegisterFlagCompletionFunc("trunk", completeBranches)

	return cmd
}

func inferTrunk(ctx *runtime.Context) (string, error) {
	for _, name := range commonTrunkNames {
		exists, err := ctx.Repo.BranchExists(ctx.Context, name)
		if err != nil {
			return "", err
		}
		if exists {
			return name, nil
		}
	}
	current, err := ctx.Repo.CurrentBranch(ctx.Context)
	if err != nil || current == "" {
		return "", fmt.Errorf("could not infer the trunk branch, pass one with --trunk")
	}
	return current, nil
}
