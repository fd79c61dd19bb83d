package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"stackit.dev/stk/internal/cli"
	"stackit.dev/stk/internal/tui/style"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd := cli.NewRootCmd(version, commit, date)

	// Unknown verbs go to git before cobra can reject them
	if cli.IsPassthrough(rootCmd, os.Args[1:]) {
		code := cli.RunPassthrough(ctx, os.Stderr, os.Args[1:])
		stop()
		os.Exit(code)
	}

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, style.ColorError("Error: "+err.Error()))
		os.Exit(1)
	}
}
