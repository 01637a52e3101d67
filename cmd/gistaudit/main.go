package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gistaudit.dev/gistaudit/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(version)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !cli.Reported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code := cli.ExitCode(err); code == 2 {
			fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", rootCmd.Name())
		}
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
