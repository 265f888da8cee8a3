package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/engine"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/storage"
	"github.com/Veraticus/pocketbook/internal/tui"
	"github.com/Veraticus/pocketbook/internal/tui/themes"
	"github.com/spf13/cobra"
)

func (a *app) themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|auto]",
		Short:     "Show or change the colour theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(model.ThemeLight), string(model.ThemeDark), string(model.ThemeAuto)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				if len(args) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), ledger.Theme(ctx))
					return nil
				}

				theme := model.Theme(strings.ToLower(args[0]))
				err := ledger.SetTheme(ctx, theme)
				if err != nil && !common.IsSoft(err) {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Theme set to "+string(theme)))
				return finish(cmd, err)
			})
		},
	}
}

func (a *app) usageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show how much space the stored data takes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				usage, err := ledger.Usage(ctx)
				if err != nil {
					return fmt.Errorf("failed to measure storage: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatUsage(usage))
				return nil
			})
		},
	}
}

func formatUsage(usage *storage.Usage) string {
	keys := make([]string, 0, len(usage.Slots))
	for key := range usage.Slots {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	lines := []string{cli.FormatTitle("Storage")}
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("  %-32s %10s bytes", key, cli.FormatCount(usage.Slots[key])))
	}
	lines = append(lines,
		fmt.Sprintf("  %-32s %10s bytes", "pocketbook data", cli.FormatCount(usage.AppBytes)),
		fmt.Sprintf("  %-32s %10s bytes", "total", cli.FormatCount(usage.TotalBytes)))
	return strings.Join(lines, "\n")
}

func (a *app) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse transactions interactively",
		Long: `Open a full-screen browser over your transactions. Cycle the type filter,
period and sort order, search, and delete entries without leaving the view.
Press ? for the key bindings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				return tui.Run(ctx, ledger,
					tui.WithTheme(themes.ForPreference(ledger.Theme(ctx))),
					tui.WithClock(a.now),
				)
			})
		},
	}
}
