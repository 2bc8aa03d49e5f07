package tui

import "github.com/charmbracelet/lipgloss"

var (
	tomato = lipgloss.Color("#E53935")
	basil  = lipgloss.Color("#43A047")
	cheese = lipgloss.Color("#FFC107")
	crust  = lipgloss.Color("#8D6E63")
	muted  = lipgloss.Color("#9E9E9E")
)

// Styles holds the lipgloss styles of the storefront.
type Styles struct {
	Header   lipgloss.Style
	Subtitle lipgloss.Style
	Title    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Price    lipgloss.Style
	Badge    lipgloss.Style
	Timer    lipgloss.Style
	Status   lipgloss.Style
	Box      lipgloss.Style
	Help     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(tomato),
		Subtitle: lipgloss.NewStyle().Foreground(crust),
		Title:    lipgloss.NewStyle().Bold(true).Underline(true),
		Item:     lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(tomato),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Price:    lipgloss.NewStyle().Foreground(basil),
		Badge:    lipgloss.NewStyle().Foreground(cheese),
		Timer:    lipgloss.NewStyle().Bold(true).Foreground(tomato),
		Status:   lipgloss.NewStyle().Bold(true).Foreground(cheese),
		Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(crust).Padding(0, 1),
		Help:     lipgloss.NewStyle().Foreground(muted).Italic(true),
	}
}
