package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ceylonmate/culture-kb/internal/models"
)

func newModelsCmd(a *app) *cobra.Command {
	params := &struct {
		Embedding bool
		All       bool
		JSON      bool
	}{}

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the Gemini models available to GEMINI_API_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lister, err := models.NewLister(ctx, a.cfg.GeminiAPIKey)
			if err != nil {
				return err
			}

			method := models.MethodGenerateContent
			switch {
			case params.All:
				method = ""
			case params.Embedding:
				method = models.MethodEmbedContent
			}

			list, err := lister.List(ctx, method)
			if err != nil {
				return err
			}

			if params.JSON {
				return a.printJSON(list)
			}
			if len(list) == 0 {
				fmt.Fprintln(a.out, "No models found.")
				return nil
			}
			for _, m := range list {
				fmt.Fprintf(a.out, "- %s\n", m.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&params.Embedding, "embedding", false, "list models supporting embedContent instead of generateContent")
	cmd.Flags().BoolVar(&params.All, "all", false, "list every model regardless of supported methods")
	cmd.Flags().BoolVar(&params.JSON, "json", false, "output as JSON")

	return cmd
}
