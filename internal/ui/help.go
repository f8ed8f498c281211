package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"tourdeck/internal/ui/input/modes"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	model help.Model
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	h := help.New()
	h.ShowAll = true
	return &HelpRenderer{model: h}
}

// SetWidth limits the help to the terminal width
func (r *HelpRenderer) SetWidth(width int) {
	r.model.Width = width
}

// renderHelpContent renders the help popup
func (r *HelpRenderer) renderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	noteStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("tourdeck help"))
	b.WriteString("\n")
	b.WriteString(r.model.FullHelpView(modes.Keys.FullHelp()))
	b.WriteString("\n")
	b.WriteString(noteStyle.Render(strings.Join([]string{
		"City, category and price need a provider and a country.",
		"Changing a filter clears the results until you apply again.",
		"Price is entered as min-max within the shown range.",
		"Press ? or esc to close.",
	}, "\n")))
	return b.String()
}

// renderShortHelp renders the one line hint under the results
func (r *HelpRenderer) renderShortHelp() string {
	short := r.model
	short.ShowAll = false
	return short.ShortHelpView(modes.Keys.ShortHelp())
}
