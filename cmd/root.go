package cmd

import (
	"github.com/krishkalaria12/snap-vault/config"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snap-vault",
		Short: "Image library API with tagging, color and similarity search",
		Long: `snap-vault stores user image uploads through an object store, tags
and captions them with a vision model, and serves paginated, filterable
queries over each user's library.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnvFile()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}
