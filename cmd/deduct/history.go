package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/deductible/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded classifications, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			user := viper.GetString("user")

			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(db)

			records, err := db.GetClassificationHistory(cmd.Context(), user, limit)
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No classification history for "+user))
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				business := "no"
				if r.IsBusinessExpense {
					business = "yes"
				}
				rows = append(rows, []string{
					r.ClassifiedAt.Local().Format("2006-01-02 15:04"),
					r.Description,
					r.MerchantName,
					business,
					r.DeductionType,
					r.DeductionAmount.StringFixed(2),
					strconv.Itoa(r.Confidence),
					string(r.Source),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
				[]string{"Classified", "Description", "Merchant", "Business", "Type", "Amount", "Conf", "Source"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 50, "maximum records to show")

	return cmd
}
