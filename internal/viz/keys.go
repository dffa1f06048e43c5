package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next      key.Binding
	Previous  key.Binding
	Reload    key.Binding
	NextLayer key.Binding
	PrevLayer key.Binding
	Rotate    key.Binding
	Tilt      key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Paths     key.Binding
	Pause     key.Binding
	Theme     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:      key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next sample")),
		Previous:  key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "previous sample")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		NextLayer: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next layer")),
		PrevLayer: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous layer")),
		Rotate:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y/Y", "rotate")),
		Tilt:      key.NewBinding(key.WithKeys("x", "X"), key.WithHelp("x/X", "tilt")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Paths:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "toggle paths")),
		Pause:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous, k.Reload},
		{k.NextLayer, k.PrevLayer, k.Paths},
		{k.Rotate, k.Tilt, k.ZoomIn, k.ZoomOut},
		{k.Pause, k.Theme, k.Help, k.Quit},
	}
}
