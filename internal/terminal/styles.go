package terminal

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	muted   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	danger  = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
	success = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FD75F"}
)

// Styles groups the lipgloss styles the printer uses.
type Styles struct {
	Title     lipgloss.Style
	Muted     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Badge     lipgloss.Style
	Timestamp lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Prompt    lipgloss.Style
}

func NewStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),

		User: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Assistant: lipgloss.NewStyle().
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(accent),

		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(accent).
			Padding(0, 1),

		Timestamp: lipgloss.NewStyle().
			Foreground(muted),

		Error: lipgloss.NewStyle().
			Foreground(danger).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(success),

		Prompt: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
	}
}
