package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/deductible/internal/cli"
	"github.com/Veraticus/deductible/internal/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func overridesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overrides",
		Short: "Manage per-transaction corrections",
		Long: `Manual overrides force a transaction to be (or not be) a business expense.
Category overrides force its deduction category. Both take precedence over
automatic classification.`,
	}

	cmd.AddCommand(overridesSetCmd())
	cmd.AddCommand(overridesCategoryCmd())
	cmd.AddCommand(overridesClearCmd())
	cmd.AddCommand(overridesListCmd())

	return cmd
}

func overridesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <transaction-id> <true|false>",
		Short: "Mark a transaction as business or personal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			isBusiness, err := strconv.ParseBool(args[1])
			if err != nil {
				return common.NewUserError("second argument must be true or false", err)
			}

			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(db)

			if err := db.SetManualOverride(cmd.Context(), viper.GetString("user"), args[0], isBusiness); err != nil {
				return fmt.Errorf("failed to set override: %w", err)
			}

			label := "personal"
			if isBusiness {
				label = "business"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s marked as %s", args[0], label)))
			return nil
		},
	}
}

func overridesCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "category <transaction-id> <category>",
		Short: "Force the deduction category of a transaction",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := strings.Join(args[1:], " ")

			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(db)

			if err := db.SetCategoryOverride(cmd.Context(), viper.GetString("user"), args[0], category); err != nil {
				if common.IsClientError(err) {
					return common.NewUserError(fmt.Sprintf("unknown deduction category %q (see 'deduct toggles list')", category), err)
				}
				return fmt.Errorf("failed to set category override: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s categorised as %s", args[0], category)))
			return nil
		},
	}
}

func overridesClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <transaction-id>",
		Short: "Remove all overrides for a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(db)

			if err := db.ClearOverrides(cmd.Context(), viper.GetString("user"), args[0]); err != nil {
				return fmt.Errorf("failed to clear overrides: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Cleared overrides for "+args[0]))
			return nil
		},
	}
}

func overridesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user := viper.GetString("user")

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			manual, err := db.GetManualOverrides(ctx, user)
			if err != nil {
				return fmt.Errorf("failed to load manual overrides: %w", err)
			}
			categories, err := db.GetCategoryOverrides(ctx, user)
			if err != nil {
				return fmt.Errorf("failed to load category overrides: %w", err)
			}

			ids := make(map[string]struct{}, len(manual)+len(categories))
			for id := range manual {
				ids[id] = struct{}{}
			}
			for id := range categories {
				ids[id] = struct{}{}
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No overrides stored for "+user))
				return nil
			}

			sorted := make([]string, 0, len(ids))
			for id := range ids {
				sorted = append(sorted, id)
			}
			sort.Strings(sorted)

			rows := make([][]string, 0, len(sorted))
			for _, id := range sorted {
				business := "-"
				if v, ok := manual[id]; ok {
					business = strconv.FormatBool(v)
				}
				category := categories[id]
				if category == "" {
					category = "-"
				}
				rows = append(rows, []string{id, business, category})
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Transaction", "Business", "Category"}, rows))
			return nil
		},
	}
}
