package ui

import "github.com/charmbracelet/lipgloss"

// Color palette: a single gold accent over grays.
const (
	ColorGold     = "220" // Primary accent
	ColorGoldDim  = "136" // Inactive stages and borders
	ColorWhite    = "255"
	ColorGray     = "245" // Labels
	ColorDarkGray = "238" // Borders, separators
	ColorRed      = "196"
	ColorOrange   = "208" // Warnings
)

// Styles holds all UI styles for TUI rendering.
type Styles struct {
	Header   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Dim      lipgloss.Style
	Stage    lipgloss.Style
	Active   lipgloss.Style
	Progress lipgloss.Style

	Border    lipgloss.Style
	Sparkline lipgloss.Style
	Speed     lipgloss.Style
	Label     lipgloss.Style
}

// DefaultStyles returns styled components for TUI mode.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorGold)),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGold)),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorOrange)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Stage:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGoldDim)),
		Active:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorGold)),
		Progress: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGold)),

		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Sparkline: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGold)),
		Speed:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	}
}

// NoColorStyles returns unstyled components.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header: plain, Success: plain, Warning: plain, Error: plain,
		Dim: plain, Stage: plain, Active: plain, Progress: plain,
		Border: plain, Sparkline: plain, Speed: plain, Label: plain,
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
