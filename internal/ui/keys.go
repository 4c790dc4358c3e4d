package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding. Which ones are active depends on the section.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Open  key.Binding
	Back  key.Binding
	Quit  key.Binding

	Refresh      key.Binding
	Select       key.Binding
	Converted    key.Binding
	NotConverted key.Binding
	Clear        key.Binding
	Copy         key.Binding
	Export       key.Binding
	Filter       key.Binding
	FilterColumn key.Binding
	ResetFilter  key.Binding

	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	ClearList key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "su")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "giù")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "colonne a sinistra")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "colonne a destra")),
		Open:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apri")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "esci")),

		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "aggiorna")),
		Select:       key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("spazio", "seleziona")),
		Converted:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "convertita")),
		NotConverted: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "non convertita")),
		Clear:        key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "pulisci stato")),
		Copy:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copia testo")),
		Export:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "esporta")),
		Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filtra")),
		FilterColumn: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "colonna filtro")),
		ResetFilter:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "azzera filtro")),

		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "campo successivo")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "campo precedente")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "invia")),
		ClearList: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "svuota elenco")),
	}
}

// sectionHelp adapts a list of bindings to help.KeyMap.
type sectionHelp []key.Binding

func (h sectionHelp) ShortHelp() []key.Binding { return h }

func (h sectionHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h} }

func (k KeyMap) helpFor(s section) sectionHelp {
	switch s {
	case sectionDashboard:
		return sectionHelp{k.Up, k.Down, k.Open, k.Refresh, k.Quit}
	case sectionTable:
		return sectionHelp{k.Up, k.Down, k.Left, k.Right, k.Select, k.Converted, k.NotConverted, k.Clear, k.Copy, k.Filter, k.FilterColumn, k.ResetFilter, k.Export, k.Refresh, k.Back}
	case sectionManual, sectionTemplates:
		return sectionHelp{k.NextField, k.PrevField, k.Submit, k.Back}
	case sectionImport:
		return sectionHelp{k.Open, k.Submit, k.Back}
	case sectionMerge:
		return sectionHelp{k.Open, k.Submit, k.ClearList, k.Back}
	}
	return sectionHelp{k.Back}
}
