package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hkm-site/internal/app"

	"github.com/spf13/cobra"
)

func main() {
	var cfgFile string

	root := &cobra.Command{
		Use:          "podcast-proxy",
		Short:        "Serve the podcast RSS feed as JSON",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			proxyApp := app.InitPodcastApp(cfgFile)
			if err := proxyApp.StartApp(ctx); err != nil {
				return fmt.Errorf("failed to start podcast proxy: %w", err)
			}

			select {
			case <-ctx.Done():
			case <-proxyApp.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), app.DefaultShutdownTimeout)
			defer cancel()

			if err := proxyApp.StopApp(shutdownCtx); err != nil {
				return fmt.Errorf("failed to stop podcast proxy gracefully: %w", err)
			}

			return nil
		},
	}
	root.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
