package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap holds every binding the board reacts to.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	moveLeft   key.Binding
	moveRight  key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	grab       key.Binding
	drop       key.Binding
	cancel     key.Binding
	addColumn  key.Binding
	addTask    key.Binding
	edit       key.Binding
	delete     key.Binding
	copyID     key.Binding
	details    key.Binding
}

// newKeyMap constructs the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "left")),
		moveRight:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "right")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		grab:       key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "grab")),
		drop:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		addColumn:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add column")),
		addTask:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit title")),
		delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		copyID:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		details:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "details")),
	}
}

// applyConfig overrides configurable bindings, keeping defaults for blank values.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.grab, cfg.Grab, "space", "grab")
	configureBinding(&k.drop, cfg.Drop, "enter", "drop")
	configureBinding(&k.cancel, cfg.Cancel, "esc", "cancel drag")
	configureBinding(&k.addColumn, cfg.AddColumn, "a", "add column")
	configureBinding(&k.addTask, cfg.AddTask, "n", "new task")
	configureBinding(&k.edit, cfg.Edit, "e", "edit title")
	configureBinding(&k.delete, cfg.Delete, "d", "delete")
	configureBinding(&k.copyID, cfg.CopyID, "y", "copy id")
	configureBinding(&k.details, cfg.Details, "i", "details")
}

// configureBinding replaces the keys and help of one binding.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, helpKey := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(helpKey, desc)
}

// parseBindingKeys turns one configured key into matcher keys plus help text.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if value == "" {
		if raw == " " {
			value = "space"
		} else {
			value = fallback
		}
	}
	if strings.EqualFold(value, "space") {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + strings.ToLower(value)}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.grab, k.drop, k.addColumn, k.addTask, k.edit, k.details, k.toggleHelp, k.quit,
	}
}

// FullHelp returns the bindings shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.grab, k.drop, k.cancel},
		{k.addColumn, k.addTask, k.edit, k.delete, k.copyID, k.details, k.toggleHelp, k.quit},
	}
}
