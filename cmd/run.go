package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/insightmine/reddit-quote-miner/internal/app"
	"github.com/insightmine/reddit-quote-miner/internal/config"
	"github.com/insightmine/reddit-quote-miner/internal/logging"
)

// newRunCmd creates the 'run' subcommand, which executes one full mining
// pass and exits.
func newRunCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Runs one full mining pass",
		Long: `Searches every configured keyword across the configured communities,
fetches the discovered posts, and writes the surviving quotes to the
configured sinks. An interrupt aborts between posts and flushes buffered
output before exiting.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(),
				syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			defer a.Close(context.WithoutCancel(ctx))

			return a.Run(ctx)
		},
	}
}
