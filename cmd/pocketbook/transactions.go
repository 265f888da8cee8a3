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

func (a *app) addCmd() *cobra.Command {
	var (
		txnType     string
		category    string
		newCategory string
		description string
		date        string
		amount      float64
		noInput     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Long: `Record a transaction. Any field not given as a flag is asked for
interactively unless --no-input is set.

Examples:
  pocketbook add --type expense --amount 1200 --category food --description "Weekly shop"
  pocketbook add --type income --amount 5000 --new-category "Side project"
  pocketbook add`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				draft := model.TransactionInput{
					Category:    category,
					Description: description,
					Date:        date,
					Amount:      amount,
				}
				if txnType != "" {
					t, err := model.ParseTransactionType(strings.ToLower(txnType))
					if err != nil {
						return err
					}
					draft.Type = t
				}
				if draft.Category != "" && draft.Type != "" {
					draft.Category = categoryID(ledger, draft.Category, draft.Type.CategoryType())
				}
				if newCategory != "" {
					draft.Category = newCategory
				}

				choice := model.ExistingCategory(draft.Category)
				if !noInput && needsInput(draft) {
					prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
					var err error
					draft, choice, err = prompter.CompleteTransaction(ctx, draft, ledger.Categories().List, model.DateOf(a.now()))
					if err != nil {
						return err
					}
					if id, ok := choice.Existing(); ok && newCategory == "" {
						choice = model.ExistingCategory(categoryID(ledger, id, draft.Type.CategoryType()))
					}
				}
				if draft.Date == "" {
					draft.Date = model.DateOf(a.now()).String()
				}
				if newCategory != "" {
					choice = model.NewCategory(newCategory)
				}

				txn, err := ledger.AddTransaction(ctx, draft, choice)
				if err != nil && !common.IsSoft(err) {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s %s on %s (%s)",
					txn.Type, cli.FormatAmount(txn.Amount), cli.FormatDate(txn.Date), txn.ID)))
				return finish(cmd, err)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&txnType, "type", "t", "", "income or expense")
	flags.Float64VarP(&amount, "amount", "a", 0, "amount in whole currency units")
	flags.StringVarP(&category, "category", "c", "", "existing category id or name")
	flags.StringVar(&newCategory, "new-category", "", "create a category with this name and use it")
	flags.StringVarP(&description, "description", "d", "", "free-text description")
	flags.StringVar(&date, "date", "", "date (YYYY-MM-DD, default today)")
	flags.BoolVar(&noInput, "no-input", false, "never prompt; fail on missing fields")
	cmd.MarkFlagsMutuallyExclusive("category", "new-category")
	return cmd
}

func needsInput(draft model.TransactionInput) bool {
	return draft.Type == "" || draft.Amount == 0 || draft.Category == ""
}

func (a *app) listCmd() *cobra.Command {
	var (
		filters filterFlags
		limit   int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions",
		Long: `List transactions matching the given filters, newest first by default.

Examples:
  pocketbook list --period month
  pocketbook list --type expense --category food --sort amount
  pocketbook list --search coffee --min 100 --max 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(_ context.Context, ledger *engine.Ledger) error {
				spec, err := filters.spec(cmd, ledger, a.now())
				if err != nil {
					return err
				}

				txns := ledger.ListTransactions(spec)
				summary := ledger.Summary(spec)
				if limit > 0 && len(txns) > limit {
					txns = txns[:limit]
				}

				out := cmd.OutOrStdout()
				if active := spec.Describe(ledger.Categories()); len(active) > 0 {
					fmt.Fprintln(out, cli.FormatInfo("Filters: "+strings.Join(active, ", ")))
				}
				fmt.Fprintln(out, cli.FormatTransactions(txns, ledger.Categories()))
				fmt.Fprintf(out, "%s transactions · income %s · expenses %s · balance %s\n",
					cli.FormatCount(summary.Count),
					cli.FormatAmount(summary.Income),
					cli.FormatAmount(summary.Expenses),
					cli.FormatAmount(summary.Balance))
				return nil
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many rows")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var (
		txnType     string
		category    string
		description string
		date        string
		amount      float64
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Long: `Change one or more fields of a transaction. Only the flags you pass are
changed.

Example:
  pocketbook edit 1710000000000 --amount 1350 --description "Groceries and snacks"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				current, ok := ledger.GetTransaction(args[0])
				if !ok {
					return &common.NotFoundError{Kind: "transaction", ID: args[0]}
				}

				var patch model.TransactionPatch
				flags := cmd.Flags()
				targetType := current.Type
				if flags.Changed("type") {
					t := model.TransactionType(strings.ToLower(txnType))
					patch.Type = &t
					targetType = t
				}
				if flags.Changed("amount") {
					patch.Amount = &amount
				}
				if flags.Changed("category") {
					id := category
					if targetType.Valid() {
						id = categoryID(ledger, category, targetType.CategoryType())
					}
					patch.Category = &id
				}
				if flags.Changed("description") {
					patch.Description = &description
				}
				if flags.Changed("date") {
					patch.Date = &date
				}
				if patch.Empty() {
					return errors.New("nothing to change: pass at least one of --type, --amount, --category, --description, --date")
				}

				txn, err := ledger.UpdateTransaction(ctx, args[0], patch)
				if err != nil && !common.IsSoft(err) {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated "+txn.ID))
				return finish(cmd, err)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&txnType, "type", "t", "", "income or expense")
	flags.Float64VarP(&amount, "amount", "a", 0, "amount in whole currency units")
	flags.StringVarP(&category, "category", "c", "", "category id or name")
	flags.StringVarP(&description, "description", "d", "", "free-text description")
	flags.StringVar(&date, "date", "", "date (YYYY-MM-DD)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				txn, ok := ledger.GetTransaction(args[0])
				if !ok {
					return &common.NotFoundError{Kind: "transaction", ID: args[0]}
				}

				question := fmt.Sprintf("Delete %s %s from %s?", txn.Type, cli.FormatAmount(txn.Amount), cli.FormatDate(txn.Date))
				ok, err := confirm(cmd, question)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
					return nil
				}

				err = ledger.DeleteTransaction(ctx, txn.ID)
				if err != nil && !common.IsSoft(err) {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+txn.ID))
				return finish(cmd, err)
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) clearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every transaction",
		Long:  "Delete every transaction. Categories and settings are kept. Take a backup first if in doubt.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				count := ledger.Transactions().Len()
				ok, err := confirm(cmd, fmt.Sprintf("Delete all %d transactions?", count))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
					return nil
				}

				err = ledger.ClearTransactions(ctx)
				if err != nil && !common.IsSoft(err) {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %d transactions", count)))
				return finish(cmd, err)
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}
