package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ceylonmate/culture-kb/internal/catalog"
	"github.com/ceylonmate/culture-kb/internal/ingest"
)

func newIngestCmd(a *app) *cobra.Command {
	params := &struct {
		Watch    bool
		Debounce time.Duration
		JSON     bool
	}{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Replace the knowledge collection with freshly embedded catalog records",
		Long: `Clears the knowledge collection, then embeds every catalog record in order
and stores one document per record. Records whose embedding fails are logged
and skipped. Storage errors abort the run with a non-zero exit status.

With --watch the command keeps running and repeats the full replacement
whenever the catalog file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			records, err := a.loadCatalog()
			if err != nil {
				return err
			}

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			emb, err := a.newEmbedder()
			if err != nil {
				return err
			}

			var limiter *rate.Limiter
			if a.cfg.EmbedRate > 0 {
				limiter = rate.NewLimiter(rate.Limit(a.cfg.EmbedRate), 1)
			}

			p := ingest.New(store, emb, ingest.Options{
				Dimensions: a.cfg.EmbeddingDimensions,
				Limiter:    limiter,
				Logger:     a.logger,
			})

			res, err := p.Run(ctx, records)
			if err != nil {
				return err
			}
			if err := a.reportRun(res, params.JSON); err != nil {
				return err
			}

			if !params.Watch {
				return nil
			}
			return a.watch(ctx, p, params.Debounce, params.JSON)
		},
	}

	cmd.Flags().BoolVar(&params.Watch, "watch", false, "re-run ingestion whenever the catalog file changes")
	cmd.Flags().DurationVar(&params.Debounce, "debounce", catalog.DefaultDebounce, "quiet period after a catalog change before re-running")
	cmd.Flags().BoolVar(&params.JSON, "json", false, "print the run summary as JSON")

	return cmd
}

func (a *app) reportRun(res *ingest.Result, asJSON bool) error {
	if asJSON {
		return a.printJSON(res)
	}
	fmt.Fprintf(a.out, "Stored %d of %d records (%d failed, %d cleared) in %s\n",
		res.Stored, res.Attempted, res.Failed(), res.Cleared, res.Duration.Round(time.Millisecond))
	for _, f := range res.Failures {
		fmt.Fprintf(a.out, "  #%d [%s] %s\n", f.Index, f.Category, f.Reason)
	}
	return nil
}

// watch re-runs the pipeline on every catalog change until ctx is done.
// Runs never overlap; changes seen during a run queue a single follow-up.
func (a *app) watch(ctx context.Context, p *ingest.Pipeline, debounce time.Duration, asJSON bool) error {
	trigger := make(chan struct{}, 1)
	watchErr := make(chan error, 1)

	go func() {
		watchErr <- catalog.Watch(ctx, a.cfg.Catalog, debounce, func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		})
	}()

	a.logger.Info("watching catalog for changes", "path", a.cfg.Catalog)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-watchErr:
			return err

		case <-trigger:
			records, err := a.loadCatalog()
			if err != nil {
				a.logger.Error("catalog reload failed, keeping previous collection", "err", err)
				continue
			}
			res, err := p.Run(ctx, records)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.logger.Error("ingestion run failed", "err", err)
				continue
			}
			if err := a.reportRun(res, asJSON); err != nil {
				return err
			}
		}
	}
}
