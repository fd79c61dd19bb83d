package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"stackit.dev/stk/internal/git"
	"stackit.dev/stk/internal/tui/style"
)

// IsPassthrough reports whether args (without the program name) start with a
// verb stk does not know. Such invocations are forwarded to git verbatim.
func IsPassthrough(root *cobra.Command, args []string) bool {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return false
	}
	if args[0] == cobra.ShellCompRequestCmd || args[0] == cobra.ShellCompNoDescRequestCmd {
		return false
	}
	root.InitDefaultHelpCmd()
	root.InitDefaultCompletionCmd()
	cmd, _, err := root.Find(args)
	return err != nil || cmd == root
}

// RunPassthrough runs git with args attached to the terminal and returns
// git's exit code
func RunPassthrough(ctx context.Context, stderr io.Writer, args []string) int {
	fmt.Fprintln(stderr, style.ColorDim("Passing command through to git..."))
	fmt.Fprintln(stderr, style.ColorDim(fmt.Sprintf("Running: \"git %s\"", strings.Join(args, " "))))
	fmt.Fprintln(stderr)

	err := git.NewCommandRunner("").RunInteractive(ctx, args...)
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	fmt.Fprintln(stderr, err)
	return 1
}
