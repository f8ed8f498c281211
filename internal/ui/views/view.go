package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"tourdeck/internal/domain"
	"tourdeck/internal/ui/services/results"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int

	Selection  domain.FilterSelection
	PriceRange *domain.PriceRange
	CityOn     bool
	CategoryOn bool
	PriceOn    bool
	Dirty      bool
	Searched   bool

	Results results.Snapshot
	Table   string // rendered tour table

	Loading      bool
	LoadingLabel string
	Spinner      string

	StatusMessage string
	StatusIsError bool

	InputMode string
	Prompt    string
	TextInput string
	Confirm   bool

	ShowHelp bool
	HelpView string
	HelpLine string

	ShowLog    bool
	LogLines   []string
	StaleCount int

	ShowShare bool
	ShareLink string
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	popupRender *PopupRenderer
	shareRender *ShareRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		popupRender: NewPopupRenderer(styles),
		shareRender: NewShareRenderer(styles),
	}
}

// Styles exposes the renderer's styles, e.g. for the tour table
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	title := r.styles.Title.Render("tourdeck")
	if state.Loading {
		label := state.LoadingLabel
		if label == "" {
			label = "Loading"
		}
		title = fmt.Sprintf("%s  %s", title, r.styles.StatusLoading.Render(state.Spinner+" "+label))
	}
	content.WriteString(title)
	content.WriteString("\n")

	content.WriteString(r.renderFilterBar(state))
	content.WriteString("\n\n")

	switch {
	case state.Confirm:
		content.WriteString(r.styles.Confirm.Render("Clear all filters and results? (y/n): "))
		content.WriteString("\n\n")
	case state.InputMode != "":
		content.WriteString(r.styles.Label.Render(state.Prompt))
		content.WriteString(state.TextInput)
		content.WriteString("\n\n")
	}

	content.WriteString(r.renderResults(state))
	content.WriteString("\n")

	if state.StatusMessage != "" {
		style := r.styles.StatusSuccess
		if state.StatusIsError {
			style = r.styles.StatusError
		}
		content.WriteString("\n")
		content.WriteString(style.Render(state.StatusMessage))
	}

	if !state.ShowHelp && !state.ShowLog && state.HelpLine != "" {
		content.WriteString("\n")
		content.WriteString(r.styles.Help.Render(state.HelpLine))
	}

	mainStyle := r.styles.Main
	if state.Height > 0 {
		mainStyle = mainStyle.MaxHeight(state.Height)
	}
	finalContent := mainStyle.Render(content.String())

	if state.ShowShare && state.ShareLink != "" {
		return r.popupRender.RenderPopupOverlay(finalContent, r.shareRender.Render(state.ShareLink), state.Height, state.Width, r.styles.ShareBox)
	}

	if state.ShowHelp {
		return r.popupRender.RenderPopupOverlay(finalContent, state.HelpView, state.Height, state.Width, r.styles.InfoBox)
	}

	if state.ShowLog {
		return r.popupRender.RenderPopupOverlay(finalContent, r.renderLog(state), state.Height, state.Width, r.styles.InfoBox)
	}

	return finalContent
}

// renderLog renders the request log popup, newest lines last
func (r *Renderer) renderLog(state ViewState) string {
	var b strings.Builder
	b.WriteString(r.styles.Confirm.Render("Request log"))
	if state.StaleCount > 0 {
		b.WriteString(r.styles.Dim.Render(fmt.Sprintf("  (%d stale responses discarded)", state.StaleCount)))
	}
	b.WriteString("\n\n")

	lines := state.LogLines
	if room := state.Height - 10; room > 0 && len(lines) > room {
		lines = lines[len(lines)-room:]
	}
	if len(lines) == 0 {
		b.WriteString(r.styles.Dim.Render("No requests yet"))
	} else {
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
		b.WriteString(r.styles.Help.Render("enter: open in pager  esc: close"))
	}
	return b.String()
}

// renderFilterBar shows every filter with its gate and the dirty marker
func (r *Renderer) renderFilterBar(state ViewState) string {
	sel := state.Selection
	country := sel.CountryID
	if country == "" {
		country = "none"
	}

	parts := []string{
		r.field("country", country, true),
		r.field("provider", sel.ProviderID, true),
		r.field("city", sel.CityID, state.CityOn),
		r.field("category", sel.CategoryID, state.CategoryOn),
		r.field("price", r.priceLabel(state), state.PriceOn),
	}

	bar := strings.Join(parts, "  ")
	if state.Dirty {
		bar += "  " + r.styles.Dirty.Render("● not applied")
	}
	return bar
}

func (r *Renderer) field(label, value string, enabled bool) string {
	if !enabled {
		return r.styles.Disabled.Render(label)
	}
	if value == "" {
		value = "any"
	}
	return r.styles.Label.Render(label+": ") + r.styles.Value.Render(value)
}

func (r *Renderer) priceLabel(state ViewState) string {
	pr := state.PriceRange
	if pr == nil {
		return ""
	}
	cur := pr.Currency
	if cur != "" {
		cur = " " + cur
	}
	return fmt.Sprintf("%s-%s%s", FormatPrice(state.Selection.MinPrice), FormatPrice(state.Selection.MaxPrice), cur)
}

// renderResults renders the table, or the empty/initial message
func (r *Renderer) renderResults(state ViewState) string {
	snap := state.Results
	switch {
	case snap.Err != nil && !snap.Loaded:
		return r.styles.StatusError.Render("Could not load tours: " + snap.Err.Error())
	case state.Loading && !snap.Loaded:
		return r.styles.Dim.Render("Loading tours...")
	case state.Dirty:
		return r.styles.Dim.Render("Filters changed. Press enter to search.")
	case !state.Searched:
		return r.styles.Dim.Render("Select a provider and press enter to search.")
	case !snap.Loaded:
		return r.styles.Dim.Render("Press enter to search.")
	case snap.IsEmpty():
		return r.styles.Dim.Render("No tours match these filters.")
	}

	p := snap.Pagination
	pager := r.styles.Pager.Render(fmt.Sprintf("page %d of %d · %d tours", p.Page, p.TotalPages, p.Total))
	return lipgloss.JoinVertical(lipgloss.Left, state.Table, pager)
}

// TourColumns returns the table columns for the given width
func TourColumns(width int) []table.Column {
	titleW := width - 4 - 12 - 12 - 14 - 8
	if titleW < 20 {
		titleW = 20
	}
	return []table.Column{
		{Title: "Title", Width: titleW},
		{Title: "City", Width: 12},
		{Title: "Category", Width: 12},
		{Title: "Price", Width: 14},
	}
}

// TourRows converts tours into table rows
func TourRows(items []domain.Tour) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, t := range items {
		price := FormatPrice(t.Price)
		if t.Currency != "" {
			price += " " + t.Currency
		}
		rows = append(rows, table.Row{t.Title, t.CityID, t.CategoryID, price})
	}
	return rows
}

// FormatPrice prints a price without trailing zeros
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
