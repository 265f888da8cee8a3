// Package themes holds the colour schemes of the transaction browser.
package themes

import (
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Header        lipgloss.Style
	Box           lipgloss.Style
	Income        lipgloss.Style
	Expense       lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
}

type palette struct {
	primary    string
	foreground string
	subtle     string
	muted      string
	border     string
	selectedFg string
	income     string
	expense    string
	warning    string
}

func build(p palette) Theme {
	return Theme{
		Primary:    lipgloss.Color(p.primary),
		Muted:      lipgloss.Color(p.muted),
		Border:     lipgloss.Color(p.border),
		Foreground: lipgloss.Color(p.foreground),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.primary)),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.subtle)),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.foreground)),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.foreground)),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(p.primary)).
			Foreground(lipgloss.Color(p.selectedFg)).
			Bold(true),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.primary)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(p.border)),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(0, 1),
		Income: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.income)),
		Expense: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.expense)),
		StatusSuccess: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.income)).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.warning)).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.expense)).
			Bold(true),
	}
}

// Dark suits terminals with a dark background.
var Dark = build(palette{
	primary:    "#7c3aed",
	foreground: "#fafafa",
	subtle:     "#a3a3a3",
	muted:      "#737373",
	border:     "#404040",
	selectedFg: "#fafafa",
	income:     "#10b981",
	expense:    "#ef4444",
	warning:    "#f59e0b",
})

// Light suits terminals with a light background.
var Light = build(palette{
	primary:    "#4f46e5",
	foreground: "#171717",
	subtle:     "#525252",
	muted:      "#a3a3a3",
	border:     "#d4d4d4",
	selectedFg: "#ffffff",
	income:     "#047857",
	expense:    "#b91c1c",
	warning:    "#b45309",
})

// ForPreference picks the theme for a saved preference. Auto follows the
// terminal background.
func ForPreference(pref model.Theme) Theme {
	switch pref {
	case model.ThemeDark:
		return Dark
	case model.ThemeLight:
		return Light
	default:
		if lipgloss.HasDarkBackground() {
			return Dark
		}
		return Light
	}
}
