// Package help renders the keyboard reference as a full-screen overlay,
// grouped into the same sections the key map is organized by.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskhub/taskhub-cli/internal/keys"
	"github.com/taskhub/taskhub-cli/internal/theme"
)

// sectionTitles label the key map's FullHelp groups, in order.
var sectionTitles = []string{
	"Navigation",
	"Views",
	"Notifications",
	"Filter & Session",
}

// Model is the keyboard reference overlay.
type Model struct {
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates the overlay for the given key map.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the root model owns opening and closing the overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the grouped key reference.
func (m Model) View() string {
	sections := make([]string, 0, len(sectionTitles)+1)
	sections = append(sections, theme.HeaderStyle.Render("Keyboard reference"))

	for i, group := range m.keys.FullHelp() {
		title := "Other"
		if i < len(sectionTitles) {
			title = sectionTitles[i]
		}
		sections = append(sections, renderSection(title, group))
	}

	body := strings.Join(sections, "\n\n")
	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(body)
}

// renderSection draws one titled block of key/description pairs with the
// keys column aligned.
func renderSection(title string, bindings []key.Binding) string {
	keyCol := 0
	for _, b := range bindings {
		if w := lipgloss.Width(b.Help().Key); w > keyCol {
			keyCol = w
		}
	}

	var b strings.Builder
	b.WriteString(theme.SelectedItemStyle.Render(title))
	for _, binding := range bindings {
		h := binding.Help()
		b.WriteString("\n  ")
		b.WriteString(theme.HelpStyle.Render(pad(h.Key, keyCol)))
		b.WriteString("  ")
		b.WriteString(h.Desc)
	}
	return b.String()
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
