// Package tui implements the terminal user interface using Bubble Tea.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette - teal counter tones
var (
	colorInk       = lipgloss.Color("#E8F1F2")
	colorTeal      = lipgloss.Color("#4ECDC4")
	colorSlate     = lipgloss.Color("#6B8A9A")
	colorHighlight = lipgloss.Color("#FFB347")
	colorSuccess   = lipgloss.Color("#4CAF50")
	colorWarning   = lipgloss.Color("#FFC107")
	colorError     = lipgloss.Color("#F44336")
	colorMuted     = lipgloss.Color("#9E9E9E")
)

// Styles holds all the lipgloss styles for the TUI.
type Styles struct {
	// App container
	App lipgloss.Style

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// List styles
	ListTitle lipgloss.Style

	// Catalog
	ItemName  lipgloss.Style
	ItemPrice lipgloss.Style
	ItemGroup lipgloss.Style

	// Board
	BoardColumn       lipgloss.Style
	BoardColumnActive lipgloss.Style
	BoardColumnTitle  lipgloss.Style
	BoardCard         lipgloss.Style
	BoardCardSelected lipgloss.Style

	// General
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Success   lipgloss.Style
	Box       lipgloss.Style
	HelpBar   lipgloss.Style
}

// DefaultStyles returns the default TUI styles.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorSlate).
			MarginBottom(1).
			Padding(0, 1),

		HeaderTitle: lipgloss.NewStyle().
			Foreground(colorTeal).
			Bold(true),

		ListTitle: lipgloss.NewStyle().
			Foreground(colorTeal).
			Bold(true).
			MarginBottom(1),

		ItemName: lipgloss.NewStyle().
			Foreground(colorInk),

		ItemPrice: lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true),

		ItemGroup: lipgloss.NewStyle().
			Foreground(colorSlate),

		BoardColumn: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSlate).
			Padding(0, 1),

		BoardColumnActive: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorTeal).
			Padding(0, 1),

		BoardColumnTitle: lipgloss.NewStyle().
			Foreground(colorTeal).
			Bold(true),

		BoardCard: lipgloss.NewStyle().
			Foreground(colorInk),

		BoardCardSelected: lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true),

		Subtle: lipgloss.NewStyle().
			Foreground(colorMuted),

		Highlight: lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(colorWarning),

		Success: lipgloss.NewStyle().
			Foreground(colorSuccess),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSlate).
			Padding(1, 2),

		HelpBar: lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1),
	}
}
