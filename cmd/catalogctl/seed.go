package main

import (
	"fmt"

	"github.com/coldenflo/ICeducation/database"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Seed the catalogue if it is missing or outdated",
		Long: `Run the same initialization the server runs at startup. The catalogue is
rewritten from the bundled seed when it is absent, unreadable or stamped with
an older data version; credentials are written only when absent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catalogue.Store.Initialize(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "catalogue at version %d (%d institutions)\n",
				catalogue.Store.Version(ctx), len(catalogue.Store.List(ctx)))
			return nil
		},
	}
}

func newReseedCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reseed",
		Short: "Replace the stored catalogue with the bundled seed",
		Long:  `Overwrite every stored institution with the bundled seed, discarding admin edits.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reseed discards all catalogue edits; pass --yes to confirm")
			}
			if err := catalogue.Store.Reseed(cmd.Context()); err != nil {
				return fmt.Errorf("reseed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalogue reseeded with %d institutions at version %d\n",
				len(catalogue.Seed.Institutions), database.CurrentDataVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm discarding stored edits")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the stored and bundled data versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stored := catalogue.Store.Version(cmd.Context())
			data := map[string]int{
				"stored":  stored,
				"bundled": database.CurrentDataVersion,
			}
			state := "current"
			switch {
			case stored == 0:
				state = "missing"
			case stored < database.CurrentDataVersion:
				state = "outdated"
			case stored > database.CurrentDataVersion:
				state = "newer"
			}
			return render(cmd.OutOrStdout(), data,
				[]string{"stored", "bundled", "state"},
				[][]string{{fmt.Sprint(stored), fmt.Sprint(database.CurrentDataVersion), state}})
		},
	}
}
