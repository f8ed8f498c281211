package modes

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tourdeck/internal/ui/input/types"
)

const (
	noticeNeedsProvider = "Select a provider first (country must be set)"
	noticeNoPriceRange  = "No price range available for these filters"
)

type NormalMode struct{}

func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil // No special actions on enter
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil // No special actions on exit
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	if msg.Type == tea.KeyCtrlC {
		return []types.Action{types.QuitAction{Force: true}}, true
	}

	switch {
	case key.Matches(msg, Keys.Up):
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case key.Matches(msg, Keys.Down):
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case key.Matches(msg, Keys.Top):
		return []types.Action{types.NavigateAction{Direction: "home"}}, true

	case key.Matches(msg, Keys.Bottom):
		return []types.Action{types.NavigateAction{Direction: "end"}}, true

	case key.Matches(msg, Keys.NextPage):
		if ctx.HasNextPage() {
			return []types.Action{types.PageAction{Direction: "next"}}, true
		}
		return nil, true

	case key.Matches(msg, Keys.PrevPage):
		if ctx.HasPrevPage() {
			return []types.Action{types.PageAction{Direction: "prev"}}, true
		}
		return nil, true

	case key.Matches(msg, Keys.Provider):
		return []types.Action{types.ChangeModeAction{Mode: types.ModeProvider}}, true

	case key.Matches(msg, Keys.City):
		if !ctx.IsCityEnabled() {
			return []types.Action{types.NoticeAction{Message: noticeNeedsProvider}}, true
		}
		return []types.Action{types.ChangeModeAction{Mode: types.ModeCity}}, true

	case key.Matches(msg, Keys.Category):
		if !ctx.IsCategoryEnabled() {
			return []types.Action{types.NoticeAction{Message: noticeNeedsProvider}}, true
		}
		return []types.Action{types.ChangeModeAction{Mode: types.ModeCategory}}, true

	case key.Matches(msg, Keys.Price):
		if !ctx.IsPriceEnabled() {
			if !ctx.IsCityEnabled() {
				return []types.Action{types.NoticeAction{Message: noticeNeedsProvider}}, true
			}
			return []types.Action{types.NoticeAction{Message: noticeNoPriceRange}}, true
		}
		return []types.Action{types.ChangeModeAction{Mode: types.ModePrice}}, true

	case key.Matches(msg, Keys.Apply):
		return []types.Action{types.ApplyFiltersAction{}}, true

	case key.Matches(msg, Keys.Clear):
		// Ask before throwing away loaded results
		if ctx.ResultCount() > 0 {
			return []types.Action{types.ChangeModeAction{Mode: types.ModeClearConfirm}}, true
		}
		return []types.Action{types.ClearFiltersAction{}}, true

	case key.Matches(msg, Keys.Share):
		if ctx.ShareQuery() == "" {
			return []types.Action{types.NoticeAction{Message: "Apply filters to get a shareable link"}}, true
		}
		return []types.Action{types.ChangeModeAction{Mode: types.ModeShare}}, true

	case key.Matches(msg, Keys.Activity):
		return []types.Action{types.ToggleActivityAction{}}, true

	case key.Matches(msg, Keys.Help):
		return []types.Action{types.ToggleHelpAction{}}, true

	case key.Matches(msg, Keys.Quit):
		return []types.Action{types.QuitAction{Force: false}}, true
	}

	return nil, false
}

// describe names the filter a text mode edits
func describe(mode types.Mode) string {
	switch mode {
	case types.ModeProvider:
		return "provider"
	case types.ModeCity:
		return "city"
	case types.ModeCategory:
		return "category"
	case types.ModePrice:
		return "price range"
	default:
		return fmt.Sprintf("mode %d", mode)
	}
}
