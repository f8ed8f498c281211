package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"tourdeck/internal/ui/input/types"
)

// ShareMode shows the shareable link popup until any key is pressed
type ShareMode struct{}

func NewShareMode() *ShareMode {
	return &ShareMode{}
}

func (m *ShareMode) Name() string {
	return "share"
}

func (m *ShareMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *ShareMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *ShareMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	if msg.Type == tea.KeyCtrlC {
		return []types.Action{types.QuitAction{Force: true}}, true
	}
	return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
}
