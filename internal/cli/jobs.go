package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"hkm-site/internal/app"
	"hkm-site/internal/content"

	"github.com/spf13/cobra"
)

var errNotObject = errors.New("document must be a JSON object")

func newSyncEventsCmd(opts *options) *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "sync-events",
		Short: "Copy upcoming Google Calendar events into collection_events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tools := app.InitTools(opts.cfgFile)

			return tools.Run(cmd.Context(), func(ctx context.Context) error {
				syncer := tools.Syncer()

				if every > 0 {
					tools.Logger.Infow("Syncing events periodically", "every", every)
					syncer.Every(ctx, every)
					return nil
				}

				n, err := syncer.SyncConfigured(ctx)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "synced %d events\n", n)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&every, "every", 0, "keep running and sync on this interval")

	return cmd
}

func newImportBlogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import-blog <dir>",
		Short: "Import Markdown posts into collection_blog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tools := app.InitTools(opts.cfgFile)

			return tools.Run(cmd.Context(), func(ctx context.Context) error {
				n, err := tools.BlogImporter().Import(ctx, args[0])
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "imported %d posts\n", n)
				return nil
			})
		},
	}
}

func newPutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <file.json>",
		Short: "Merge a JSON document into a content key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !content.ValidKey(key) {
				return fmt.Errorf("%w: %q", content.ErrInvalidKey, key)
			}

			partial, err := readDocument(args[1])
			if err != nil {
				return err
			}

			tools := app.InitTools(opts.cfgFile)

			return tools.Run(cmd.Context(), func(ctx context.Context) error {
				if err := tools.Content.Write(ctx, key, partial); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", key)
				return nil
			})
		},
	}
}

func readDocument(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%s: %w", path, errNotObject)
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%s: %w", path, errNotObject)
	}

	return doc, nil
}
