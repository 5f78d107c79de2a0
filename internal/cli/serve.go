package cli

import (
	"context"
	"fmt"

	"hkm-site/internal/app"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the site with live content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			siteApp := app.InitSiteApp(opts.cfgFile)
			if err := siteApp.StartApp(ctx); err != nil {
				return fmt.Errorf("failed to start site: %w", err)
			}

			select {
			case <-ctx.Done():
				siteApp.Logger.Infow("Shutting down the site server")
			case <-siteApp.Done():
				siteApp.Logger.Errorw("Site server stopped unexpectedly")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), app.DefaultShutdownTimeout)
			defer cancel()

			if err := siteApp.StopApp(shutdownCtx); err != nil {
				return fmt.Errorf("failed to stop site gracefully: %w", err)
			}

			return nil
		},
	}
}
