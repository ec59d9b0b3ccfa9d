// Package help shows the key bindings next to the palette commands.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sqs-console/internal/keys"
	"github.com/nhle/sqs-console/internal/theme"
	"github.com/nhle/sqs-console/internal/ui/command"
)

var sectionTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(theme.ColorWhite).
	MarginBottom(1)

// Model is the help overlay. Disabled bindings are left out by the
// bubbles help renderer, so the overlay tracks what is currently usable.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a help overlay for km.
func New(km *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	m := Model{keys: km, help: h}
	m.SetSize(width, height)
	return m
}

// Update is a no-op; the root model closes the overlay.
func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders key bindings and palette commands side by side, or
// stacked when the terminal is narrow.
func (m Model) View() string {
	bindings := lipgloss.JoinVertical(lipgloss.Left,
		sectionTitle.Render("Keys"),
		m.help.View(m.keys),
	)
	cmds := lipgloss.JoinVertical(lipgloss.Left,
		sectionTitle.Render("Commands (:)"),
		commandList(),
	)

	var content string
	if lipgloss.Width(bindings)+lipgloss.Width(cmds)+4 <= m.width-4 {
		content = lipgloss.JoinHorizontal(lipgloss.Top, bindings, "    ", cmds)
	} else {
		content = lipgloss.JoinVertical(lipgloss.Left, bindings, "", cmds)
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

func commandList() string {
	all := command.Commands()
	nameWidth := 0
	for _, c := range all {
		nameWidth = max(nameWidth, len(c.Name))
	}

	lines := make([]string, 0, len(all))
	for _, c := range all {
		name := theme.PanelTitleStyle.Render(fmt.Sprintf("%-*s", nameWidth, c.Name))
		lines = append(lines, name+"  "+theme.HelpStyle.Render(c.Description))
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
