package main

import (
	"fmt"
	"strconv"

	"github.com/coldenflo/ICeducation/model"
	"github.com/spf13/cobra"
)

func institutionRows(list []model.Institution) [][]string {
	rows := make([][]string, 0, len(list))
	for _, inst := range list {
		ranking := "-"
		if inst.WorldRanking != nil {
			ranking = strconv.Itoa(*inst.WorldRanking)
		}
		rows = append(rows, []string{
			inst.ID,
			truncate(inst.Slug, 32),
			truncate(inst.Name, 40),
			truncate(inst.Location, 24),
			ranking,
			strconv.Itoa(len(inst.Programs)),
		})
	}
	return rows
}

var institutionHeaders = []string{"id", "slug", "name", "location", "world", "programs"}

func newListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored institutions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := catalogue.Store.Search(cmd.Context(), search)
			return render(cmd.OutOrStdout(), list, institutionHeaders, institutionRows(list))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive match on name, location or program")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <slug-or-id>",
		Short: "Show one institution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, ok := catalogue.Store.Resolve(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("institution %q not found", args[0])
			}
			return render(cmd.OutOrStdout(), inst, institutionHeaders, institutionRows([]model.Institution{inst}))
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an institution by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inst, ok := catalogue.Store.FindByID(ctx, args[0])
			if !ok {
				return fmt.Errorf("institution %q not found", args[0])
			}
			if err := catalogue.Store.Remove(ctx, inst.ID); err != nil {
				return fmt.Errorf("delete %s: %w", inst.ID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", inst.ID, inst.Name)
			return nil
		},
	}
}
