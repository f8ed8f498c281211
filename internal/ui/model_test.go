package ui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdeck/internal/config"
	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
	"tourdeck/internal/session"
	"tourdeck/internal/ui/coordinator"
	inputtypes "tourdeck/internal/ui/input/types"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls []domain.AppliedQuery
}

func (b *fakeBackend) FetchTours(ctx context.Context, q domain.AppliedQuery, limit int) (domain.ResultPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, q)

	title := "Cenote swim"
	if q.Page == 2 {
		title = "Night market walk"
	}
	return domain.ResultPage{
		Items:      []domain.Tour{{ID: "t" + string(rune('0'+q.Page)), Title: title, CityID: q.CityID, Price: 450, Currency: "MXN"}},
		Pagination: domain.Pagination{Page: q.Page, Limit: limit, Total: 11, TotalPages: 2},
	}, nil
}

func (b *fakeBackend) FetchPriceRange(ctx context.Context, f domain.PriceRangeFilter) (*domain.PriceRange, error) {
	if f.CategoryID == "food" {
		return &domain.PriceRange{MinPrice: 300, MaxPrice: 900, Currency: "MXN", Count: 4}, nil
	}
	return &domain.PriceRange{MinPrice: 100, MaxPrice: 5000, Currency: "MXN", Count: 11}, nil
}

func (b *fakeBackend) queries() []domain.AppliedQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.AppliedQuery(nil), b.calls...)
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func newTestModel(t *testing.T, country, query string) (*Model, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	coord := coordinator.NewCoordinator(eventbus.NullBus{}, session.New(country), backend, backend, 10)
	cfg := config.DefaultConfig()
	cfg.UI.ShareBaseURL = "https://tours.example.com/list"

	m := NewModel(context.Background(), eventbus.NullBus{}, cfg, coord, query)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, backend
}

// run executes cmd and feeds fetch results back into the model until no
// fetch is outstanding. Other messages (spinner ticks, cursor blinks) are dropped.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			run(t, m, c)
		}
	case toursLoadedMsg, priceRangeMsg:
		_, next := m.Update(msg)
		run(t, m, next)
	}
}

func submit(t *testing.T, m *Model, mode inputtypes.Mode, text string) {
	t.Helper()
	run(t, m, m.processAction(inputtypes.SubmitTextAction{Text: text, Mode: mode}))
}

func TestApplyShowsResults(t *testing.T) {
	m, backend := newTestModel(t, "MX", "")

	assert.Contains(t, m.View(), "Select a provider")

	submit(t, m, inputtypes.ModeProvider, "P1")
	assert.True(t, m.coord.Filters.IsPriceEnabled())
	assert.Contains(t, m.View(), "not applied")

	run(t, m, m.processAction(inputtypes.ApplyFiltersAction{}))
	require.Equal(t, 1, backend.callCount())

	view := m.View()
	assert.Contains(t, view, "Cenote swim")
	assert.Contains(t, view, "page 1 of 2")
	assert.NotContains(t, view, "not applied")
}

func TestApplyWithoutProviderShowsNotice(t *testing.T) {
	m, backend := newTestModel(t, "MX", "")

	run(t, m, m.processAction(inputtypes.ApplyFiltersAction{}))
	assert.Zero(t, backend.callCount())
	assert.Equal(t, "Select a provider before applying filters", m.status)
	assert.False(t, m.statusErr)
}

func TestFilterChangeClearsTable(t *testing.T) {
	m, _ := newTestModel(t, "MX", "")
	submit(t, m, inputtypes.ModeProvider, "P1")
	run(t, m, m.processAction(inputtypes.ApplyFiltersAction{}))
	require.Contains(t, m.View(), "Cenote swim")

	submit(t, m, inputtypes.ModeCity, "C9")

	view := m.View()
	assert.NotContains(t, view, "Cenote swim")
	assert.Contains(t, view, "Filters changed")
	assert.Empty(t, m.table.Rows())
}

func TestNextPageFetchesAndRenders(t *testing.T) {
	m, backend := newTestModel(t, "MX", "")
	submit(t, m, inputtypes.ModeProvider, "P1")
	run(t, m, m.processAction(inputtypes.ApplyFiltersAction{}))

	run(t, m, m.processAction(inputtypes.PageAction{Direction: "next"}))
	require.Equal(t, 2, backend.callCount())
	assert.Contains(t, m.View(), "Night market walk")

	// Past the last page nothing is dispatched
	run(t, m, m.processAction(inputtypes.PageAction{Direction: "next"}))
	assert.Equal(t, 2, backend.callCount())
}

func TestPriceOutsideRangeIsRejected(t *testing.T) {
	m, _ := newTestModel(t, "MX", "")
	submit(t, m, inputtypes.ModeProvider, "P1")

	submit(t, m, inputtypes.ModePrice, "50-900")
	assert.Equal(t, "Price must satisfy 100 <= min < max <= 5000", m.status)

	submit(t, m, inputtypes.ModePrice, "200-900")
	sel := m.coord.Filters.Selection()
	assert.Equal(t, 200.0, sel.MinPrice)
	assert.Equal(t, 900.0, sel.MaxPrice)
}

func TestMountRestoresSharedPage(t *testing.T) {
	m, backend := newTestModel(t, "MX", "userId=P1&countryId=MX&cityId=C9&page=2")

	run(t, m, m.Init())

	require.Equal(t, 2, backend.callCount(), "page 1 then the shared page")
	applied, ok := m.coord.Filters.Applied()
	require.True(t, ok)
	assert.Equal(t, "C9", applied.CityID)
	assert.Equal(t, 2, applied.Page)

	assert.Contains(t, m.View(), "Night market walk")
	assert.Equal(t, "https://tours.example.com/list?cityId=C9&countryId=MX&page=2&userId=P1", m.shareLink())
}

func TestApplyDuringPriceRangeLoadSearchesAgain(t *testing.T) {
	m, backend := newTestModel(t, "MX", "")
	submit(t, m, inputtypes.ModeProvider, "P1")

	rangeCmd := m.processAction(inputtypes.SubmitTextAction{Text: "food", Mode: inputtypes.ModeCategory})
	require.NotNil(t, rangeCmd)
	applyCmd := m.processAction(inputtypes.ApplyFiltersAction{})
	require.NotNil(t, applyCmd)

	// The range lands first and moves the window under the applied query
	run(t, m, rangeCmd)
	run(t, m, applyCmd)

	calls := backend.queries()
	require.Len(t, calls, 2)
	assert.Equal(t, 300.0, calls[0].MinPrice)
	assert.Equal(t, 900.0, calls[0].MaxPrice)

	assert.False(t, m.coord.Filters.IsDirty())
	assert.Contains(t, m.View(), "Cenote swim")
	assert.Len(t, m.table.Rows(), 1)
}

func TestClearResetsFilters(t *testing.T) {
	m, _ := newTestModel(t, "MX", "")
	submit(t, m, inputtypes.ModeProvider, "P1")
	run(t, m, m.processAction(inputtypes.ApplyFiltersAction{}))

	m.processAction(inputtypes.ClearFiltersAction{})

	assert.Equal(t, "", m.coord.Filters.Selection().ProviderID)
	assert.Equal(t, "Filters cleared", m.status)
	assert.True(t, strings.Contains(m.View(), "Select a provider"))
}

func TestEventsFeedRequestLog(t *testing.T) {
	m, _ := newTestModel(t, "MX", "")

	m.Update(EventMsg{Event: domain.StaleResponseEvent{Token: 1, Latest: 2, Op: "tours"}})
	m.processAction(inputtypes.ToggleActivityAction{})

	view := m.View()
	assert.Contains(t, view, "Request log")
	assert.Contains(t, view, "1 stale responses discarded")
	assert.Contains(t, view, "tours response discarded, latest is 2")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotContains(t, m.View(), "Request log")
}
