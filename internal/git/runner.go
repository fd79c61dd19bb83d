package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	stkerrors "stackit.dev/stk/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// CommandRunner handles execution of git commands in a single working directory
type CommandRunner struct {
	workingDir string
	env        []string
}

// NewCommandRunner creates a new CommandRunner. An empty workingDir runs in
// the process working directory.
func NewCommandRunner(workingDir string) *CommandRunner {
	return &CommandRunner{workingDir: workingDir}
}

// WithEnv returns a copy of the runner that appends env to every command's environment
func (r *CommandRunner) WithEnv(env ...string) *CommandRunner {
	return &CommandRunner{
		workingDir: r.workingDir,
		env:        append(append([]string{}, r.env...), env...),
	}
}

// WorkingDir returns the directory commands run in
func (r *CommandRunner) WorkingDir() string {
	return r.workingDir
}

// Run executes a git command and returns its trimmed stdout
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	return r.run(ctx, "git", "", true, args...)
}

// RunRaw executes a git command and returns its stdout untouched
func (r *CommandRunner) RunRaw(ctx context.Context, args ...string) (string, error) {
	return r.run(ctx, "git", "", false, args...)
}

// RunLines executes a git command and splits its output into lines
func (r *CommandRunner) RunLines(ctx context.Context, args ...string) ([]string, error) {
	output, err := r.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// RunWithInput executes a git command with input on stdin
func (r *CommandRunner) RunWithInput(ctx context.Context, input string, args ...string) (string, error) {
	return r.run(ctx, "git", input, true, args...)
}

// RunGH executes a gh command in the runner's directory
func (r *CommandRunner) RunGH(ctx context.Context, args ...string) (string, error) {
	return r.run(ctx, "gh", "", true, args...)
}

func (r *CommandRunner) run(ctx context.Context, command, input string, trim bool, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", stkerrors.NewGitCommandError(command, args, stdout.String(), stderr.String(), ctx.Err())
		}
		return "", stkerrors.NewGitCommandError(command, args, stdout.String(), stderr.String(), err)
	}
	if trim {
		return strings.TrimSpace(stdout.String()), nil
	}
	return stdout.String(), nil
}

// RunInteractive executes a git command with stdin/stdout/stderr connected
// to the terminal. Used for passthrough of unknown verbs.
func (r *CommandRunner) RunInteractive(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// exitCode returns the exit code carried by a command error, or -1
func exitCode(err error) int {
	var cmdErr *stkerrors.GitCommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode()
	}
	return -1
}
