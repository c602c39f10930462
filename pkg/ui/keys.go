package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the form's key bindings
type KeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Down     key.Binding
	Up       key.Binding
	Choose   key.Binding
	Close    key.Binding
	Clear    key.Binding
	Toggle   key.Binding
	Continue key.Binding
	Back     key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding

	Left           key.Binding
	Right          key.Binding
	Profile        key.Binding
	EditUniversity key.Binding
	EditPersonal   key.Binding
	Refresh        key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		Down:     key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next option")),
		Up:       key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous option")),
		Choose:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose option")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close menu")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear selection")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "open dropdown")),
		Continue: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "continue")),
		Back:     key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "back")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy summary")),
		Help:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "toggle help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		Left:           key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous level")),
		Right:          key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next level")),
		Profile:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "open profile")),
		EditUniversity: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "edit university details")),
		EditPersonal:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit personal details")),
		Refresh:        key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload profile")),
	}
}

// HelpSections groups bindings for the help overlay
func (k KeyMap) HelpSections() []HelpSection {
	return []HelpSection{
		{Title: "NAVIGATION", Bindings: []key.Binding{k.Next, k.Prev, k.Help, k.Quit}},
		{Title: "LOOKUPS", Bindings: []key.Binding{k.Down, k.Up, k.Choose, k.Close, k.Clear, k.Toggle}},
		{Title: "FORM", Bindings: []key.Binding{k.Continue, k.Back, k.Copy}},
		{Title: "PROFILE", Bindings: []key.Binding{k.Profile, k.EditUniversity, k.EditPersonal, k.Left, k.Right, k.Refresh}},
	}
}
