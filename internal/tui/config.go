package tui

import (
	"time"

	"github.com/Veraticus/pocketbook/internal/filter"
	"github.com/Veraticus/pocketbook/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Now      func() time.Time
	Spec     filter.Spec
	Width    int
	Height   int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:    themes.Light,
		Now:      time.Now,
		Spec:     filter.DefaultSpec(),
		Width:    80,
		Height:   24,
		ShowHelp: true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithClock sets the clock used for period presets.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithSpec sets the view the browser opens with.
func WithSpec(spec filter.Spec) Option {
	return func(c *Config) {
		c.Spec = spec
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithHelp sets whether the help line is shown.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
