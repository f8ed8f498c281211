package modes

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the normal mode bindings. It doubles as the help.KeyMap for
// the help popup.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Provider key.Binding
	City     key.Binding
	Category key.Binding
	Price    key.Binding
	Apply    key.Binding
	Clear    key.Binding
	Share    key.Binding
	Activity key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// Keys is the default key map
var Keys = KeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	NextPage: key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/n", "next page")),
	PrevPage: key.NewBinding(key.WithKeys("left", "h", "N"), key.WithHelp("←/N", "prev page")),
	Provider: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "provider")),
	City:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "city")),
	Category: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "category")),
	Price:    key.NewBinding(key.WithKeys("$"), key.WithHelp("$", "price range")),
	Apply:    key.NewBinding(key.WithKeys("enter", "a"), key.WithHelp("enter/a", "apply filters")),
	Clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
	Share:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share link")),
	Activity: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "request log")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Provider, k.Apply, k.NextPage, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.NextPage, k.PrevPage, k.Share, k.Activity},
		{k.Provider, k.City, k.Category, k.Price},
		{k.Apply, k.Clear, k.Help, k.Quit},
	}
}
