package cli

import (
	"github.com/spf13/cobra"
)

type options struct {
	cfgFile string
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "hkm-site",
		Short: "His Kingdom Ministry site server and content tools",
		Long: `hkm-site serves the static ministry pages with live content from the
content store and ships the administrative jobs that fill that store.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./config.yaml)")

	root.AddCommand(
		newServeCmd(opts),
		newSyncEventsCmd(opts),
		newImportBlogCmd(opts),
		newPutCmd(opts),
	)

	return root
}
