package cli

import "github.com/charmbracelet/lipgloss"

// styles holds the lipgloss styles for variable output.
type styles struct {
	// Name is the style for variable names (cyan).
	Name lipgloss.Style

	// Value is the style for variable values.
	Value lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Name:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")), // Cyan
		Value: lipgloss.NewStyle(),
	}
}
