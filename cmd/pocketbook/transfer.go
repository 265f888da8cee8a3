package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/engine"
	"github.com/Veraticus/pocketbook/internal/export"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// stdioPath selects standard input or output instead of a file.
const stdioPath = "-"

func (a *app) exportCmd() *cobra.Command {
	var (
		filters filterFlags
		format  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV or JSON",
		Long: `Export the selected transactions. The format follows --format, or the
extension of --output when --format is not given. Without --output the file
is named transactions-YYYY-MM-DD.<format> in the current directory; use
--output - to write to standard output.

Examples:
  pocketbook export --period year
  pocketbook export --type expense --output expenses.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := exportFormat(format, output)
			if err != nil {
				return err
			}

			return a.withLedger(cmd, func(_ context.Context, ledger *engine.Ledger) error {
				spec, err := filters.spec(cmd, ledger, a.now())
				if err != nil {
					return err
				}

				if output == stdioPath {
					return ledger.Export(cmd.OutOrStdout(), f, spec)
				}
				if output == "" {
					output = export.Filename(f, a.now())
				}

				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				if err := ledger.Export(file, f, spec); err != nil {
					_ = file.Close()
					return fmt.Errorf("failed to export: %w", err)
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}

				count := len(ledger.ListTransactions(spec))
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", count, output)))
				return nil
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "csv or json (default csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file, or - for standard output")
	return cmd
}

func exportFormat(format, output string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if output != "" && output != stdioPath {
		if f, err := export.FormatFromPath(output); err == nil {
			return f, nil
		}
	}
	return export.FormatCSV, nil
}

// importFormat is a supported import source.
type importFormat string

const (
	importJSON importFormat = "json"
	importOFX  importFormat = "ofx"
)

func parseImportFormat(format, path string) (importFormat, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch strings.ToLower(format) {
	case "json":
		return importJSON, nil
	case "ofx", "qfx":
		return importOFX, nil
	default:
		return "", fmt.Errorf("cannot import %s: unknown format %q (use json, ofx or qfx)", path, format)
	}
}

func (a *app) importCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import transactions from JSON exports or OFX/QFX bank statements",
		Long: `Import transactions. JSON files must be pocketbook exports; OFX and QFX
statements are filed under the configured import categories. Records whose
id is already present are skipped, so re-importing a file is safe.

Examples:
  pocketbook import transactions-2024-03-20.json
  pocketbook import ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				handler := cli.NewInterruptHandler(cmd.OutOrStdout())
				ctx = handler.HandleInterrupts(ctx, "Import", true)

				var bar *progressbar.ProgressBar
				if len(files) > 1 {
					bar = newImportBar(cmd.ErrOrStderr(), len(files))
				}

				var (
					total  engine.ImportResult
					failed []error
					soft   error
				)
				for _, path := range files {
					if ctx.Err() != nil {
						break
					}

					result, err := a.importFile(ctx, ledger, format, path)
					total.Read += result.Read
					total.Added += result.Added
					switch {
					case err == nil:
					case common.IsSoft(err):
						soft = err
					default:
						slog.Error("Failed to import file", "file", filepath.Base(path), "error", err)
						failed = append(failed, fmt.Errorf("%s: %w", filepath.Base(path), err))
					}

					if bar != nil {
						_ = bar.Add(1)
					}
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d of %d transactions (%d already present)",
					total.Added, total.Read, total.Skipped())))

				if len(failed) > 0 {
					return errors.Join(failed...)
				}
				return finish(cmd, soft)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or ofx (default: from the file extension)")
	return cmd
}

func (a *app) importFile(ctx context.Context, ledger *engine.Ledger, format, path string) (engine.ImportResult, error) {
	f, err := parseImportFormat(format, path)
	if err != nil {
		return engine.ImportResult{}, err
	}

	file, err := os.Open(path) // #nosec G304 -- path comes from the user's own arguments
	if err != nil {
		return engine.ImportResult{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("Failed to close file", "file", path, "error", closeErr)
		}
	}()

	slog.Info("Importing file", "file", filepath.Base(path), "format", f)
	if f == importOFX {
		return ledger.ImportOFX(ctx, file)
	}
	return ledger.ImportJSON(ctx, file)
}

// expandFiles resolves glob patterns, keeping literal paths that match nothing.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err != nil {
			slog.Warn("No files found matching pattern", "pattern", pattern)
			continue
		}
		files = append(files, pattern)
	}

	if len(files) == 0 {
		return nil, errors.New("no files found to import")
	}
	return files, nil
}

func newImportBar(w io.Writer, files int) *progressbar.ProgressBar {
	return progressbar.NewOptions(files,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing files...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func (a *app) backupCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup of all data",
		Long: `Write every transaction, category and setting to a single JSON document
that restore accepts. Without --output the file is named
pocketbook-backup-YYYY-MM-DD.json; use --output - for standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				raw, err := ledger.Backup(ctx)
				if err != nil {
					return fmt.Errorf("failed to create backup: %w", err)
				}

				if output == stdioPath {
					_, err := cmd.OutOrStdout().Write(append(raw, '\n'))
					return err
				}
				if output == "" {
					output = fmt.Sprintf("pocketbook-backup-%s.json", model.DateOf(a.now()))
				}
				if err := os.WriteFile(output, raw, 0600); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Backup written to "+output))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file, or - for standard output")
	return cmd
}

func (a *app) restoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace all data with a backup",
		Long: `Replace every transaction, category and setting with the contents of a
backup. An invalid backup is rejected and nothing changes. Use - to read the
backup from standard input; that implies --yes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == stdioPath {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}

			return a.withLedger(cmd, func(ctx context.Context, ledger *engine.Ledger) error {
				if args[0] != stdioPath {
					ok, err := confirm(cmd, "Replace all current data with this backup?")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing restored"))
						return nil
					}
				}

				if err := ledger.Restore(ctx, raw); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Restored %d transactions", ledger.Transactions().Len())))
				return nil
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}
