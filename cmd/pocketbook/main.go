package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	now     func() time.Time
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), now: time.Now}

	root := &cobra.Command{
		Use:   "pocketbook",
		Short: "💰 Personal income and expense tracker",
		Long: `pocketbook: a small personal finance ledger for your terminal.

Record income and expenses, organise them into categories, filter and search
your history, and see where the money goes with summaries, trends, a health
score and plain-language insights.`,
		PersistentPreRunE: a.initConfig,
		SilenceUsage:      true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/pocketbook/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("db", "", "database path (default: ~/.local/share/pocketbook/pocketbook.db)")

	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	_ = a.v.BindPFlag(config.KeyDatabasePath, flags.Lookup("db"))

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.clearCmd(),
		a.categoriesCmd(),
		a.summaryCmd(),
		a.trendCmd(),
		a.reportCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.backupCmd(),
		a.restoreCmd(),
		a.themeCmd(),
		a.usageCmd(),
		a.browseCmd(),
		versionCmd(),
	)
	return root
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		a.v.AddConfigPath(filepath.Join(home, ".config", "pocketbook"))
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	config.ConfigureEnv(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	if err := common.SetupLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pocketbook %s\n", version)
		},
	}
}
