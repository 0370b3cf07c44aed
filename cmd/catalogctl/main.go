// Command catalogctl manages the stored university catalogue directly
// through the configured backend, without going through the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/coldenflo/ICeducation/app"
	"github.com/coldenflo/ICeducation/config"
	"github.com/coldenflo/ICeducation/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"

	// Global flags
	outputFlag  string
	backendFlag string

	catalogue *app.Catalogue
	logger    *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Manage the stored university catalogue",
		Long: `catalogctl reads and edits the university catalogue in the store the API
server is configured with (STORE_BACKEND and friends, .env in development).

Use it to seed a fresh environment, force a reseed after editing the bundled
data, or move catalogue entries between environments with export/import.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadENV(); err != nil {
				return err
			}
			env, err := config.Get()
			if err != nil {
				return err
			}
			if backendFlag != "" {
				env.STORE_BACKEND = backendFlag
			}

			logger, err = utils.NewLogger(env.GO_ENV)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			catalogue, err = app.OpenCatalogue(env, logger)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			_ = logger.Sync()
			return catalogue.Close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Override STORE_BACKEND (memory, sqlite, postgres, redis, spaces)")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newReseedCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}
