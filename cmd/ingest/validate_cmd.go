package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ceylonmate/culture-kb/internal/ingest"
)

var errInvalidCollection = errors.New("collection does not match catalog")

func newValidateCmd(a *app) *cobra.Command {
	params := &struct {
		JSON bool
	}{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the stored collection against the catalog",
		Long: `Scans every stored document and checks that its vector has the configured
dimensionality, that it matches exactly one catalog record, that no record is
stored twice and that there are no more documents than records.
Exits non-zero when any check fails.`,
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

			report, err := ingest.Verify(ctx, store, records, a.cfg.EmbeddingDimensions)
			if err != nil {
				return err
			}

			if params.JSON {
				if err := a.printJSON(report); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(a.out, "%d documents checked against %d catalog records\n", report.Documents, report.Catalog)
				for _, v := range report.Violations {
					fmt.Fprintf(a.out, "  %s [%s] %s\n", v.DocumentID, v.Category, v.Problem)
				}
			}

			if !report.OK() {
				return fmt.Errorf("%w: %d violations", errInvalidCollection, len(report.Violations))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&params.JSON, "json", false, "print the report as JSON")

	return cmd
}
