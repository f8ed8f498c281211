package modes

import (
	"github.com/charmbracelet/bubbles/textinput"

	"tourdeck/internal/ui/input/types"
)

// FilterMode edits one of the id filters (provider, city or category).
// An empty submission clears the filter.
type FilterMode struct {
	EntryMode
}

func NewFilterMode(mode types.Mode, ti *textinput.Model) *FilterMode {
	return &FilterMode{EntryMode: newEntryMode(mode, describe(mode)+" id: ", ti)}
}
