package tui

import "github.com/charmbracelet/bubbles/key"

type listKeyMap struct {
	Up, Down    key.Binding
	Left, Right key.Binding
	Focus       key.Binding
	Add         key.Binding
	Submit      key.Binding
	Toggle      key.Binding
	Open        key.Binding
	Reload      key.Binding
	Dismiss     key.Binding
	Quit        key.Binding
}

func newListKeyMap() listKeyMap {
	return listKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "to do")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "done")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Open, k.Focus, k.Reload, k.Quit}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Add, k.Toggle, k.Open, k.Focus},
		{k.Reload, k.Dismiss, k.Quit},
	}
}

type detailKeyMap struct {
	Next, Prev key.Binding
	Toggle     key.Binding
	Pick       key.Binding
	Save       key.Binding
	Delete     key.Binding
	Back       key.Binding
}

func newDetailKeyMap() detailKeyMap {
	return detailKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Toggle: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle done")),
		Pick:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "attach image")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Delete: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

func (k detailKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Save, k.Delete, k.Back}
}

func (k detailKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Toggle, k.Pick}, {k.Save, k.Delete, k.Back}}
}
