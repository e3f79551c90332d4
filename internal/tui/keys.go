package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings of the browser
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Search   key.Binding
	Nav      key.Binding
	Open     key.Binding
	Close    key.Binding
	Wishlist key.Binding
	Playing  key.Binding
	Remove   key.Binding
	Login    key.Binding
	Logout   key.Binding
	Home     key.Binding
	Dismiss  key.Binding
	Quit     key.Binding

	// Login form
	NextField  key.Binding
	PrevField  key.Binding
	ToggleForm key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Nav:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "menu")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Wishlist: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wishlist")),
		Playing:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "my games")),
		Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		Login:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "login")),
		Logout:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "logout")),
		Home:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		Dismiss:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		NextField:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		ToggleForm: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "login/signup")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Nav, k.Open, k.Login, k.Home, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Search, k.Nav, k.Open, k.Close},
		{k.Wishlist, k.Playing, k.Remove},
		{k.Login, k.Logout, k.Home, k.Dismiss, k.Quit},
	}
}

// overlayHelp lists the bindings shown while a game is open
func (k keyMap) overlayHelp() []key.Binding {
	return []key.Binding{k.Wishlist, k.Playing, k.Remove, k.Dismiss, k.Close}
}

// formHelp lists the bindings shown in the login form
func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.NextField, k.ToggleForm, k.Open, k.Close}
}
