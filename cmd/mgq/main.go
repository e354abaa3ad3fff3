package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"moderngov/cmd/mgq/commands"
)

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := commands.ExecuteContext(ctx)
	if err != nil {
		stop()
		fatal("mgq failed", err)
	}
}
