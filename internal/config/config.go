package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "POCKETBOOK"

// Config keys.
const (
	KeyDatabasePath    = "database.path"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyImportIncome    = "import.income_category"
	KeyImportExpense   = "import.expense_category"
	KeyReportMonths    = "report.months"
	KeyDefaultTheme    = "theme.default"
	defaultDatabaseDir = "~/.local/share/pocketbook"
)

// Config is the typed application configuration.
type Config struct {
	DatabasePath    string
	LogLevel        string
	LogFormat       string
	IncomeCategory  string
	ExpenseCategory string
	DefaultTheme    model.Theme
	ReportMonths    int
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, filepath.Join(defaultDatabaseDir, "pocketbook.db"))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyImportIncome, "salary")
	v.SetDefault(KeyImportExpense, "shopping")
	v.SetDefault(KeyReportMonths, 12)
	v.SetDefault(KeyDefaultTheme, string(model.ThemeLight))
}

// ConfigureEnv makes v read POCKETBOOK_* variables, with dots in key names
// replaced by underscores (POCKETBOOK_DATABASE_PATH).
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads every key from v and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		DatabasePath:    ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:        strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:       strings.ToLower(v.GetString(KeyLogFormat)),
		IncomeCategory:  strings.TrimSpace(v.GetString(KeyImportIncome)),
		ExpenseCategory: strings.TrimSpace(v.GetString(KeyImportExpense)),
		ReportMonths:    v.GetInt(KeyReportMonths),
		DefaultTheme:    model.Theme(v.GetString(KeyDefaultTheme)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabasePath == "" {
		errs = append(errs, fmt.Errorf("%w: %s is required", common.ErrMissingConfig, KeyDatabasePath))
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, c.LogFormat))
	}
	if c.IncomeCategory == "" {
		errs = append(errs, fmt.Errorf("%w: %s is required", common.ErrMissingConfig, KeyImportIncome))
	}
	if c.ExpenseCategory == "" {
		errs = append(errs, fmt.Errorf("%w: %s is required", common.ErrMissingConfig, KeyImportExpense))
	}
	if c.ReportMonths < 1 || c.ReportMonths > 120 {
		errs = append(errs, fmt.Errorf("%w: %s must be between 1 and 120, got %d",
			common.ErrInvalidConfig, KeyReportMonths, c.ReportMonths))
	}
	if _, err := model.ParseTheme(string(c.DefaultTheme)); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err))
	}

	return errors.Join(errs...)
}

// LoadDotEnv loads variables from a .env file in the working directory when
// one exists. Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load %s: %w", strings.Join(existing, ", "), err)
	}
	slog.Debug("Loaded environment files", "files", existing)
	return nil
}
