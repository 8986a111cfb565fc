package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/autoreconcile/internal/cli"
	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/config"
)

func main() {
	flags, err := cli.ParseReconcileFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err = cli.RunReconcile(ctx, cfg, flags, os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 3 for invalid input records and 1 for everything else.
func exitCode(err error) int {
	var verr *reconciler.ValidationError
	if errors.As(err, &verr) {
		return 3
	}
	return 1
}
