// cmd/shim/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ceylonmate/culture-kb/internal/client"
	"github.com/ceylonmate/culture-kb/internal/logging"
	"github.com/ceylonmate/culture-kb/internal/shim"
)

func main() {
	apiURL := flag.String("api-url", "", "Knowledge API URL (required)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.New(*logLevel, "text")

	// Check for env var if flag not set
	if *apiURL == "" {
		*apiURL = os.Getenv("KB_API_URL")
	}

	if *apiURL == "" {
		logger.Error("API URL required: use --api-url or KB_API_URL environment variable")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiClient := client.New(*apiURL)
	if err := apiClient.Health(ctx); err != nil {
		logger.Warn("knowledge API not healthy yet", "url", *apiURL, "err", err)
	}

	handler := shim.NewHandler(apiClient)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ceylonmate-culture-kb",
		Version: "1.0.0",
	}, nil)

	shim.Register(server, handler)

	logger.Info("starting knowledge base shim", "api", *apiURL)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
