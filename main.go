package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/divij-pawar/relcheck/cmd"
	"github.com/divij-pawar/relcheck/internal/observability"
)

func main() {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	// Cancel the run wholesale on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer observability.Sync()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		observability.Sync()
		os.Exit(1)
	}
}
