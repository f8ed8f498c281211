package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"tourdeck/internal/config"
	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
	"tourdeck/internal/ui/coordinator"
	"tourdeck/internal/ui/handlers"
	"tourdeck/internal/ui/input"
	"tourdeck/internal/ui/input/modes"
	inputtypes "tourdeck/internal/ui/input/types"
	"tourdeck/internal/ui/services/querysync"
	"tourdeck/internal/ui/views"
)

// Model represents the UI state
type Model struct {
	ctx    context.Context
	bus    eventbus.EventBus
	config *config.Config
	coord  *coordinator.Coordinator

	// UI-specific state
	width     int
	height    int
	showHelp  bool
	showLog   bool
	status    string
	statusErr bool

	// Mount restore: apply once the mount price range settles, then move to
	// the page the query asked for.
	mountQuery  string
	mountToken  uint64
	autoApply   bool
	pendingPage int

	spinner      spinner.Model
	table        table.Model
	helpRender   *HelpRenderer
	eventHandler *handlers.EventHandler
	pager        *PagerOps
	renderer     *views.Renderer
	inputHandler *input.Handler
}

// NewModel creates a new UI model. mountQuery is a shareable query to
// restore filters from, or "".
func NewModel(ctx context.Context, bus eventbus.EventBus, cfg *config.Config, coord *coordinator.Coordinator, mountQuery string) *Model {
	renderer := views.NewRenderer()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = renderer.Styles().StatusLoading

	t := table.New(
		table.WithColumns(views.TourColumns(80)),
		table.WithFocused(true),
		table.WithHeight(coord.Results.Limit()+1),
	)
	t.SetStyles(renderer.Styles().Table)

	return &Model{
		ctx:          ctx,
		bus:          bus,
		config:       cfg,
		coord:        coord,
		mountQuery:   mountQuery,
		spinner:      sp,
		table:        t,
		helpRender:   NewHelpRenderer(),
		eventHandler: handlers.NewEventHandler(),
		pager:        NewPagerOps(),
		renderer:     renderer,
		inputHandler: input.New(),
	}
}

// SetProgram attaches the running program, needed to hand the terminal to the pager
func (m *Model) SetProgram(p *tea.Program) {
	m.pager.SetProgram(p)
}

// Init restores the mount query and starts the spinner
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.mountQuery == "" {
		return tea.Batch(cmds...)
	}

	req, page, err := m.coord.Mount(m.mountQuery)
	if err != nil {
		log.Printf("ui: %v", err)
		m.setError(fmt.Sprintf("Ignoring shared link: %v", err))
		return tea.Batch(cmds...)
	}
	if req != nil {
		m.mountToken = req.Token
		m.autoApply = true
		m.pendingPage = page
		cmds = append(cmds, m.fetchPriceRange(*req))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.helpRender.SetWidth(msg.Width)
		m.table.SetColumns(views.TourColumns(msg.Width - 4))
		m.table.SetWidth(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		if m.showLog {
			switch msg.String() {
			case "enter":
				if m.pager.Available() {
					m.showLog = false
					return m, m.openLogPager()
				}
			case "esc", "L", "q":
				m.showLog = false
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}

		// Help popup swallows keys until closed
		if m.showHelp {
			switch msg.String() {
			case "esc", "?", "q":
				m.showHelp = false
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}

		ctx := &input.ModelContext{Coordinator: m.coord}
		actions, cmd := m.inputHandler.HandleKey(msg, ctx)

		cmds := []tea.Cmd{}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		for _, action := range actions {
			if actionCmd := m.processAction(action); actionCmd != nil {
				cmds = append(cmds, actionCmd)
			}
		}
		return m, tea.Batch(cmds...)

	default:
		if cmd := m.inputHandler.Update(msg); cmd != nil {
			return m, cmd
		}
		return m.handleNonKeyboardMsg(msg)
	}
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toursLoadedMsg:
		return m, m.handleToursLoaded(msg.out)

	case priceRangeMsg:
		return m, m.handlePriceRange(msg.out)

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case logPagerMsg:
		if msg.err != nil {
			log.Printf("Log pager failed: %v", msg.err)
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleToursLoaded(out querysync.Outcome) tea.Cmd {
	if !m.coord.ResolveTours(out) {
		return nil
	}
	defer m.syncTable()

	if out.Err != nil {
		m.pendingPage = 0
		m.setError(out.Err.Error())
		return nil
	}

	m.clearStatus()
	if m.pendingPage > 1 {
		page := m.pendingPage
		m.pendingPage = 0
		if req := m.coord.SetPage(page); req != nil {
			return m.fetchTours(*req)
		}
		log.Printf("ui: shared page %d is out of range", page)
		m.setNotice(fmt.Sprintf("Page %d no longer exists, showing page 1", page))
	}
	m.pendingPage = 0
	return nil
}

func (m *Model) handlePriceRange(out querysync.PriceRangeOutcome) tea.Cmd {
	installed, reapply := m.coord.ResolvePriceRange(out)
	if out.Err != nil && out.Token == m.coord.Sync.LatestPriceRangeToken() {
		m.setError(out.Err.Error())
	}
	if installed && out.Range == nil {
		m.setNotice("No tours to price for these filters")
	}
	if reapply != nil {
		defer m.syncTable()
		m.setNotice("Price range updated, searching again")
		return m.fetchTours(*reapply)
	}

	if !m.autoApply || out.Token != m.mountToken {
		return nil
	}
	m.autoApply = false
	return m.apply()
}

func (m *Model) handleEvent(event eventbus.DomainEvent) {
	m.eventHandler.HandleEvent(event)

	switch e := event.(type) {
	case domain.FetchFailedEvent:
		log.Printf("ui: %s request %d failed: %v", e.Op, e.Token, e.Err)
	case domain.StaleResponseEvent:
		log.Printf("ui: discarded %s response %d (latest %d)", e.Op, e.Token, e.Latest)
	}
}

// processAction executes one input action
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	// Any filter change may have cleared the store
	defer m.syncTable()

	switch a := action.(type) {
	case inputtypes.NavigateAction:
		switch a.Direction {
		case "up":
			m.table.MoveUp(1)
		case "down":
			m.table.MoveDown(1)
		case "home":
			m.table.GotoTop()
		case "end":
			m.table.GotoBottom()
		}

	case inputtypes.PageAction:
		m.pendingPage = 0
		var req *querysync.Request
		switch a.Direction {
		case "next":
			req = m.coord.NextPage()
		case "prev":
			req = m.coord.PrevPage()
		}
		if req != nil {
			return m.fetchTours(*req)
		}

	case inputtypes.SubmitTextAction:
		return m.submitText(a)

	case inputtypes.ApplyFiltersAction:
		return m.apply()

	case inputtypes.ClearFiltersAction:
		m.cancelMount()
		m.coord.Clear()
		m.setNotice("Filters cleared")

	case inputtypes.NoticeAction:
		m.setNotice(a.Message)

	case inputtypes.ToggleHelpAction:
		m.showHelp = !m.showHelp

	case inputtypes.ToggleActivityAction:
		m.showLog = !m.showLog

	case inputtypes.QuitAction:
		return tea.Quit
	}

	return nil
}

// submitText applies a value typed into one of the filter modes
func (m *Model) submitText(a inputtypes.SubmitTextAction) tea.Cmd {
	m.cancelMount()

	switch a.Mode {
	case inputtypes.ModeProvider:
		m.clearStatus()
		if req := m.coord.SetProvider(a.Text); req != nil {
			return m.fetchPriceRange(*req)
		}

	case inputtypes.ModeCity:
		if !m.coord.SetCity(a.Text) {
			m.setNotice("Select a provider first (country must be set)")
			return nil
		}
		m.clearStatus()

	case inputtypes.ModeCategory:
		ok, req := m.coord.SetCategory(a.Text)
		if !ok {
			m.setNotice("Select a provider first (country must be set)")
			return nil
		}
		m.clearStatus()
		if req != nil {
			return m.fetchPriceRange(*req)
		}

	case inputtypes.ModePrice:
		lo, hi, err := modes.ParsePriceWindow(a.Text)
		if err != nil {
			m.setError(err.Error())
			return nil
		}
		if !m.coord.SetPriceRange(lo, hi) {
			m.setNotice(m.priceRejectedNotice())
			return nil
		}
		m.clearStatus()
	}

	return nil
}

// apply validates the selection and fetches page 1
func (m *Model) apply() tea.Cmd {
	req, err := m.coord.Apply()
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			m.setNotice(capitalize(verr.Error()))
		} else {
			m.setError(err.Error())
		}
		return nil
	}
	if req == nil {
		m.setNotice("Results are up to date")
		return nil
	}
	m.clearStatus()
	return m.fetchTours(*req)
}

func (m *Model) cancelMount() {
	m.autoApply = false
	m.pendingPage = 0
}

func (m *Model) priceRejectedNotice() string {
	pr, ok := m.coord.Filters.PriceRange()
	if !ok {
		return "No price range available for these filters"
	}
	return fmt.Sprintf("Price must satisfy %s <= min < max <= %s",
		views.FormatPrice(pr.MinPrice), views.FormatPrice(pr.MaxPrice))
}

// openLogPager shows the full request log in the pager
func (m *Model) openLogPager() tea.Cmd {
	content := strings.Join(m.eventHandler.Lines(), "\n")
	return func() tea.Msg {
		return logPagerMsg{err: m.pager.Show(content)}
	}
}

// fetchTours runs a tours request off the update loop
func (m *Model) fetchTours(req querysync.Request) tea.Cmd {
	return func() tea.Msg {
		return toursLoadedMsg{out: m.coord.RunTours(m.ctx, req)}
	}
}

// fetchPriceRange runs a price range request off the update loop
func (m *Model) fetchPriceRange(req querysync.PriceRangeRequest) tea.Cmd {
	return func() tea.Msg {
		return priceRangeMsg{out: m.coord.RunPriceRange(m.ctx, req)}
	}
}

// syncTable mirrors the result store into the table
func (m *Model) syncTable() {
	snap := m.coord.Results.Snapshot()
	m.table.SetRows(views.TourRows(snap.Items))
	if m.table.Cursor() >= len(snap.Items) {
		m.table.SetCursor(0)
	}
}

func (m *Model) setNotice(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) setError(msg string) {
	m.status = msg
	m.statusErr = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

// shareLink returns the shareable link for the last dispatched request
func (m *Model) shareLink() string {
	q := m.coord.ShareQuery()
	if q == "" {
		return ""
	}
	return m.config.UI.ShareBaseURL + "?" + q
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	f := m.coord.Filters
	state := views.ViewState{
		Width:         m.width,
		Height:        m.height,
		Selection:     f.Selection(),
		CityOn:        f.IsCityEnabled(),
		CategoryOn:    f.IsCategoryEnabled(),
		PriceOn:       f.IsPriceEnabled(),
		Dirty:         f.IsDirty(),
		Searched:      f.HasSearched(),
		Results:       m.coord.Results.Snapshot(),
		Table:         m.table.View(),
		Loading:       m.coord.Loading.Active(),
		LoadingLabel:  m.coord.Loading.Label(),
		Spinner:       m.spinner.View(),
		StatusMessage: m.status,
		StatusIsError: m.statusErr,
		ShowHelp:      m.showHelp,
		HelpLine:      m.helpRender.renderShortHelp(),
	}
	if pr, ok := f.PriceRange(); ok {
		state.PriceRange = &pr
	}
	if m.showHelp {
		state.HelpView = m.helpRender.renderHelpContent()
	}
	if m.showLog {
		state.ShowLog = true
		state.LogLines = m.eventHandler.Lines()
		state.StaleCount = m.eventHandler.StaleCount()
	}

	switch mode := m.inputHandler.CurrentMode(); mode {
	case inputtypes.ModeClearConfirm:
		state.Confirm = true
	case inputtypes.ModeShare:
		state.ShowShare = true
		state.ShareLink = m.shareLink()
	default:
		if ti := m.inputHandler.TextInput(); ti != nil {
			state.InputMode = m.inputHandler.CurrentModeName()
			state.Prompt = m.inputHandler.Prompt()
			state.TextInput = ti.View()
		}
	}

	return m.renderer.Render(state)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
