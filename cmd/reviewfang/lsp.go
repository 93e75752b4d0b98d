package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/reviewfang/internal/config"
	"github.com/Sumatoshi-tech/reviewfang/internal/review"
	"github.com/Sumatoshi-tech/reviewfang/internal/server"
)

func lspCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the review language server (stdio mode)",
		Long: `Start the review language server (LSP) on stdio. Editors connect to it to
get review findings published as diagnostics while they edit.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := newLogger()
			client := review.NewClient(
				cfg.Review.Endpoint,
				cfg.Review.Model,
				os.Getenv(cfg.Review.APIKeyEnv),
				cfg.Review.Timeout,
				logger,
			)

			return server.NewServer(cfg, client, logger).Run()
		},
	}

	return cmd
}
