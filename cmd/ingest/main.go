// Command ingest builds and inspects the cultural knowledge vector collection.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
