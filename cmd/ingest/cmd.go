package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ceylonmate/culture-kb/internal/catalog"
	"github.com/ceylonmate/culture-kb/internal/config"
	"github.com/ceylonmate/culture-kb/internal/embedder"
	"github.com/ceylonmate/culture-kb/internal/logging"
	"github.com/ceylonmate/culture-kb/internal/storage"
	"github.com/ceylonmate/culture-kb/internal/types"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

func newRootCmd() *cobra.Command {
	params := &struct {
		EnvFile  string
		LogLevel string
		Catalog  string
	}{}
	a := &app{}

	cmd := &cobra.Command{
		Use:          "ingest",
		Short:        "CeylonMate cultural knowledge base tools",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(params.EnvFile)
			if err != nil {
				return err
			}
			if params.LogLevel != "" {
				cfg.LogLevel = params.LogLevel
			}
			if params.Catalog != "" {
				cfg.Catalog = params.Catalog
			}
			a.cfg = cfg
			a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogHandler)
			a.out = cmd.OutOrStdout()
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&params.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flags.StringVar(&params.LogLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.StringVar(&params.Catalog, "catalog", "", "catalog file (overrides KB_CATALOG)")

	cmd.AddCommand(
		newIngestCmd(a),
		newValidateCmd(a),
		newSearchCmd(a),
		newModelsCmd(a),
	)

	return cmd
}

func (a *app) loadCatalog() ([]types.KnowledgeRecord, error) {
	records, err := catalog.Load(a.cfg.Catalog)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("catalog loaded", "path", a.cfg.Catalog, "records", len(records))
	return records, nil
}

func (a *app) openStorage(ctx context.Context) (storage.Storage, error) {
	store, err := storage.New(ctx, a.cfg.Storage())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.logger.Info("connected to storage", "driver", a.cfg.StorageDriver, "collection", a.cfg.Collection)
	return store, nil
}

func (a *app) newEmbedder() (embedder.Embedder, error) {
	emb, err := embedder.New(a.cfg.Embedder())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return emb, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
