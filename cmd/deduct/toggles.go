package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/deductible/internal/cli"
	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/reference"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func togglesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggles",
		Short: "Manage which deduction categories are enabled",
		Long: `Only transactions matching an enabled deduction category can be classified
as business expenses. Every category starts disabled.`,
	}

	cmd.AddCommand(togglesListCmd())
	cmd.AddCommand(togglesSetCmd())
	cmd.AddCommand(togglesInitCmd())

	return cmd
}

func togglesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every deduction category and whether it is enabled",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(db)

			state, err := db.GetDeductionToggles(cmd.Context(), viper.GetString("user"))
			if err != nil {
				return fmt.Errorf("failed to load toggles: %w", err)
			}

			rows := make([][]string, 0, len(state))
			for _, name := range sortedCategories(state) {
				enabled := cli.SubtleStyle.Render("off")
				if state[name] {
					enabled = cli.SuccessStyle.Render("on")
				}
				rows = append(rows, []string{name, enabled})
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Deduction category", "Enabled"}, rows))
			return nil
		},
	}
}

func togglesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <on|off>",
		Short: "Enable or disable one deduction category",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := strings.Join(args[:len(args)-1], " ")
			enabled, err := parseSwitch(args[len(args)-1])
			if err != nil {
				return err
			}

			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(db)

			if err := db.SetDeductionToggle(cmd.Context(), viper.GetString("user"), category, enabled); err != nil {
				if common.IsClientError(err) {
					return common.NewUserError(fmt.Sprintf("unknown deduction category %q (see 'deduct toggles list')", category), err)
				}
				return fmt.Errorf("failed to set toggle: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s: %s", category, args[len(args)-1])))
			return nil
		},
	}
}

func togglesInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [category...]",
		Short: "Reset toggles so only the given categories are enabled",
		Long: `Reset every deduction category to disabled, then enable the listed ones.
Quote category names that contain spaces.

Example:
  deduct toggles init "Home Office Expenses" "Vehicles, Travel & Transport"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if !reference.IsDeductionCategory(name) {
					return common.NewUserError(fmt.Sprintf("unknown deduction category %q", name), common.ErrUnknownCategory)
				}
			}

			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(db)

			if err := db.InitializeToggles(cmd.Context(), viper.GetString("user"), args); err != nil {
				return fmt.Errorf("failed to initialize toggles: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Enabled %d of %d deduction categories",
				len(args), len(reference.DeductionCategories()))))
			return nil
		},
	}
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "enable", "enabled":
		return true, nil
	case "off", "disable", "disabled":
		return false, nil
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false, common.NewUserError("last argument must be on or off", common.ErrInvalidInput)
	}
	return enabled, nil
}
