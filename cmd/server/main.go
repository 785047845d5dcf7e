package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ceylonmate/culture-kb/internal/answer"
	"github.com/ceylonmate/culture-kb/internal/config"
	"github.com/ceylonmate/culture-kb/internal/embedder"
	"github.com/ceylonmate/culture-kb/internal/logging"
	"github.com/ceylonmate/culture-kb/internal/service"
	"github.com/ceylonmate/culture-kb/internal/storage"
	"github.com/ceylonmate/culture-kb/internal/tools"
	"github.com/ceylonmate/culture-kb/internal/types"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file to load before reading the environment")

	// CLI mode flags
	listFlag := flag.Bool("list", false, "List stored passages (CLI mode)")
	limitFlag := flag.Int("limit", 5, "Limit for list operation")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("kb-server %s\n", version)
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	// stdout carries the MCP stream, so logs always go to stderr
	logger := logging.New(cfg.LogLevel, cfg.LogHandler)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// CLI mode - list passages
	if *listFlag {
		if err := runList(ctx, cfg.Storage(), *limitFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := storage.New(ctx, cfg.Storage())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	emb, err := embedder.New(cfg.Embedder())
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}

	var opts []service.Option
	if cfg.AnswerEnabled() {
		gen, err := answer.New(cfg.Answer())
		if err != nil {
			return fmt.Errorf("failed to initialize answer model: %w", err)
		}
		opts = append(opts, service.WithGenerator(gen))
	} else {
		logger.Info("GROQ_API_KEY not set, kb_ask disabled")
	}

	svc := service.New(store, emb, opts...)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ceylonmate-culture-kb",
		Version: version,
	}, nil)

	tools.Register(server, svc)

	logger.Info("starting MCP server", "driver", cfg.StorageDriver, "collection", cfg.Collection)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runList(ctx context.Context, cfg storage.Config, limit int) error {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	docs, err := store.List(ctx, types.ListOpts{Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to list passages: %w", err)
	}

	for _, d := range docs {
		fmt.Printf("[%s] %s\n", d.Category, d.Text)
	}
	return nil
}
