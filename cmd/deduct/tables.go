package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/deductible/internal/cli"
	"github.com/Veraticus/deductible/internal/reference"
	"github.com/spf13/cobra"
)

func tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Show reference table sizes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats := reference.TableStats()
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Reference tables"))
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
				[]string{"Table", "Entries"},
				[][]string{
					{"Industries", strconv.Itoa(stats.Industries)},
					{"Deductible industries", strconv.Itoa(stats.DeductibleIndustries)},
					{"Merchants", strconv.Itoa(stats.Merchants)},
					{"Deduction rules", strconv.Itoa(stats.DeductionRules)},
					{"Blacklist terms", strconv.Itoa(stats.BlacklistTerms)},
					{"Variations", strconv.Itoa(stats.Variations)},
					{"Deposit platforms", strconv.Itoa(stats.DepositPlatforms)},
				},
			))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "industry <code>",
		Short: "Look up an industry code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := reference.Lookup(args[0])
			deductible := "no"
			if info.IsDeductible {
				deductible = "yes"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
				[]string{"Code", "Category", "Description", "Deductible"},
				[][]string{{args[0], info.Category, info.Description, deductible}},
			))
			return nil
		},
	})

	return cmd
}
