package tui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTTY returns true if stdin and stdout are both terminals
func IsTTY() bool {
	if !((isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))) {
		return false
	}
	// Also try to open /dev/tty to verify it's actually available
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// IsInteractive reports whether prompts may be shown
func IsInteractive() bool {
	if os.Getenv("STK_NON_INTERACTIVE") != "" {
		return false
	}
	return IsTTY()
}
