package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandGenerator runs a user-configured shell command, feeding it the
// prompt on stdin and reading the title and body from stdout
type CommandGenerator struct {
	command string
	shell   string
}

// NewCommandGenerator returns a generator for the given command line
func NewCommandGenerator(command string) (*CommandGenerator, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("describe command is empty")
	}
	return &CommandGenerator{command: command, shell: "sh"}, nil
}

// GenerateDescription implements Generator
func (g *CommandGenerator) GenerateDescription(ctx context.Context, prContext *PRContext) (string, string, error) {
	cmd := exec.CommandContext(ctx, g.shell, "-c", g.command)
	cmd.Stdin = strings.NewReader(BuildPrompt(prContext))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", "", fmt.Errorf("%s not found in PATH", g.shell)
		}

		var msg strings.Builder
		msg.WriteString("describe command failed")
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			fmt.Fprintf(&msg, " with exit code %d", exitError.ExitCode())
		}
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg.WriteString(": ")
			msg.WriteString(s)
		}
		return "", "", fmt.Errorf("%s: %w", msg.String(), err)
	}

	title, body := parsePRResponse(stdout.String())
	if title == "" && body == "" {
		return "", "", errors.New("describe command produced no output")
	}
	return title, body, nil
}
