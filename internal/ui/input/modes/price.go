package modes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tourdeck/internal/ui/input/types"
)

// PriceMode edits the price window as "min-max"
type PriceMode struct {
	EntryMode
}

func NewPriceMode(ti *textinput.Model) *PriceMode {
	return &PriceMode{
		EntryMode: newEntryMode(types.ModePrice, "price (min-max): ", ti),
	}
}

// HandleKey refuses to leave the mode on a malformed window so the user can fix it
func (m *PriceMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	if key.Matches(msg, entryKeys.Submit) {
		if _, _, err := ParsePriceWindow(m.value()); err != nil {
			return []types.Action{types.NoticeAction{Message: err.Error()}}, true
		}
	}
	return m.EntryMode.HandleKey(msg, ctx)
}

// ParsePriceWindow parses "min-max" (a comma or space also separates).
func ParsePriceWindow(text string) (float64, float64, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(text), func(r rune) bool {
		return r == '-' || r == ',' || r == ' '
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected min-max, got %q", text)
	}

	lo, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minimum price %q", fields[0])
	}
	hi, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid maximum price %q", fields[1])
	}
	return lo, hi, nil
}
