package review

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the review list.
type Styles struct {
	Header       lipgloss.Style
	Group        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Checked      lipgloss.Style
	Detail       lipgloss.Style
	URL          lipgloss.Style
	Status       lipgloss.Style
	HintKey      lipgloss.Style
	HintDesc     lipgloss.Style
}

// DefaultStyles returns the default style configuration: grayscale with a
// single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}

	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			MarginBottom(1),

		Group: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),

		Item: lipgloss.NewStyle().
			Foreground(primary),

		ItemSelected: lipgloss.NewStyle().
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		Checked: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Detail: lipgloss.NewStyle().
			Foreground(subtle),

		URL: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),

		Status: lipgloss.NewStyle().
			Foreground(accent),

		HintKey: lipgloss.NewStyle().
			Foreground(primary),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
