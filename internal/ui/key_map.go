package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next     key.Binding
	prev     key.Binding
	first    key.Binding
	last     key.Binding
	jump     key.Binding
	grow     key.Binding
	shrink   key.Binding
	search   key.Binding
	sort     key.Binding
	unsort   key.Binding
	column   key.Binding
	refresh  key.Binding
	submit   key.Binding
	cancel   key.Binding
	quit     key.Binding
	showHelp key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:     key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		prev:     key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		first:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first page")),
		last:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last page")),
		jump:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "go to page")),
		grow:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more rows")),
		shrink:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer rows")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
		unsort:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear sort")),
		column:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next column")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		showHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.prev, k.search, k.sort, k.showHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.first, k.last, k.jump},
		{k.grow, k.shrink, k.refresh},
		{k.search, k.sort, k.unsort, k.column},
		{k.showHelp, k.quit},
	}
}

// searchHelp is shown while the search input has focus.
func (k keyMap) searchHelp() []key.Binding {
	return []key.Binding{k.submit, k.cancel}
}
