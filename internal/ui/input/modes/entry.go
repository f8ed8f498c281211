package modes

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tourdeck/internal/ui/input/types"
)

// entryKeys are the keys a filter entry reacts to. Everything else is typed.
var entryKeys = struct {
	Submit key.Binding
	Cancel key.Binding
	Quit   key.Binding
}{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "set filter")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "keep previous value")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// EntryMode edits one filter value in the shared text input. The handler
// seeds the input before Enter runs; Submit hands back the trimmed value.
type EntryMode struct {
	mode   types.Mode
	prompt string
	input  *textinput.Model
}

func newEntryMode(mode types.Mode, prompt string, input *textinput.Model) EntryMode {
	return EntryMode{mode: mode, prompt: prompt, input: input}
}

func (m EntryMode) Name() string {
	return describe(m.mode)
}

// Prompt is rendered by the filter bar, not by the input itself
func (m EntryMode) Prompt() string {
	return m.prompt
}

func (m EntryMode) Enter(ctx types.Context) []types.Action {
	if m.input == nil {
		return nil
	}
	m.input.Prompt = ""
	m.input.Focus()
	return nil
}

func (m EntryMode) Exit(ctx types.Context) []types.Action {
	if m.input != nil {
		m.input.Blur()
	}
	return nil
}

func (m EntryMode) value() string {
	if m.input == nil {
		return ""
	}
	return strings.TrimSpace(m.input.Value())
}

func (m EntryMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch {
	case key.Matches(msg, entryKeys.Quit):
		return []types.Action{types.QuitAction{Force: true}}, true
	case key.Matches(msg, entryKeys.Cancel):
		return []types.Action{
			types.CancelTextAction{},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case key.Matches(msg, entryKeys.Submit):
		return []types.Action{
			types.SubmitTextAction{Text: m.value(), Mode: m.mode},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	}
	return nil, false
}
