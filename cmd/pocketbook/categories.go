package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/engine"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/spf13/cobra"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage income and expense categories",
		Long: `Manage the categories transactions are filed under. Income and expense
categories are kept separately; a name must be unique within its type.`,
	}

	cmd.AddCommand(
		a.listCategoriesCmd(),
		a.addCategoryCmd(),
		a.editCategoryCmd(),
		a.deleteCategoryCmd(),
		a.resetCategoriesCmd(),
		a.categoryStatsCmd(),
	)
	return cmd
}

func parseCategoryType(s string) (model.CategoryType, error) {
	return model.ParseCategoryType(strings.ToLower(s))
}

func (a *app) listCategoriesCmd() *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(_ context.Context, ledger *engine.Ledger) error {
				categories := ledger.Categories().All()
				if categoryType != "" {
					t, err := parseCategoryType(categoryType)
					if err != nil {
						return err
					}
					categories = ledger.Categories().List(t)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatCategories(categories))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&categoryType, "type", "t", "", "only list income or expense categories")
	return cmd
}

func (a *app) addCategoryCmd() *cobra.Command {
	var (
		categoryType string
		color        string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Long: `Create a category. Without --color the next colour of the palette is used.

Example:
  pocketbook categories add "Pet Care" --type expense --color bg-amber-500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseCategoryType(categoryType)
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				c, err := ledger.AddCategory(ctx, t, args[0], color)
				if err != nil && !common.IsSoft(err) {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s category %q (%s)", c.Type, c.Name, c.ID)))
				return finish(cmd, err)
			})
		},
	}
	cmd.Flags().StringVarP(&categoryType, "type", "t", string(model.CategoryTypeExpense), "income or expense")
	cmd.Flags().StringVar(&color, "color", "", "display colour token")
	return cmd
}

func (a *app) editCategoryCmd() *cobra.Command {
	var (
		categoryType string
		name         string
		color        string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename or recolour a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseCategoryType(categoryType)
			if err != nil {
				return err
			}

			var patch model.CategoryPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("color") {
				patch.Color = &color
			}
			if patch.Name == nil && patch.Color == nil {
				return errors.New("nothing to change: pass --name or --color")
			}

			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				c, err := ledger.UpdateCategory(ctx, categoryID(ledger, args[0], t), t, patch)
				if err != nil && !common.IsSoft(err) {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s category %q", c.Type, c.Name)))
				return finish(cmd, err)
			})
		},
	}
	cmd.Flags().StringVarP(&categoryType, "type", "t", string(model.CategoryTypeExpense), "income or expense")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new colour token")
	return cmd
}

func (a *app) deleteCategoryCmd() *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category. Transactions filed under it are kept and shown
as "Unknown" until they are moved to another category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseCategoryType(categoryType)
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				id := categoryID(ledger, args[0], t)
				c, ok := ledger.Categories().Get(id, t)
				if !ok {
					return &common.NotFoundError{Kind: "category", ID: args[0]}
				}

				ok, err := confirm(cmd, fmt.Sprintf("Delete %s category %q?", c.Type, c.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
					return nil
				}

				err = ledger.DeleteCategory(ctx, id, t)
				if err != nil && !common.IsSoft(err) {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s category %q", c.Type, c.Name)))
				return finish(cmd, err)
			})
		},
	}
	cmd.Flags().StringVarP(&categoryType, "type", "t", string(model.CategoryTypeExpense), "income or expense")
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) resetCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				ok, err := confirm(cmd, "Replace every category with the defaults?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Categories unchanged"))
					return nil
				}

				err = ledger.ResetCategories(ctx)
				if err != nil && !common.IsSoft(err) {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Categories reset to defaults"))
				return finish(cmd, err)
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) categoryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many transactions each category holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(_ context.Context, ledger *engine.Ledger) error {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatCategoryStats(ledger.CategoryStats()))
				return nil
			})
		},
	}
}
