package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sqs-console/internal/theme"
)

// Names of the palette commands.
const (
	Refresh    = "refresh"
	NewQueue   = "new"
	Send       = "send"
	Delete     = "delete"
	Purge      = "purge"
	Dismiss    = "dismiss"
	DismissAll = "dismiss all"
	History    = "history"
	Help       = "help"
	Quit       = "quit"
)

// Command describes one palette entry.
type Command struct {
	Name        string
	Description string
}

var commands = []Command{
	{Refresh, "reload the queue list"},
	{NewQueue, "create a queue"},
	{Send, "send a message to the selected queue"},
	{Delete, "delete the selected queue"},
	{Purge, "purge the selected queue"},
	{Dismiss, "dismiss the oldest notification"},
	{DismissAll, "dismiss every notification"},
	{History, "show notification history"},
	{Help, "show key bindings"},
	{Quit, "exit the console"},
}

// Commands returns the palette commands in display order.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// CommandMsg is emitted when the user executes a command. The text is
// normalized: trimmed, lower-cased, inner whitespace collapsed.
type CommandMsg string

// Normalize canonicalizes palette input.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(names())
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

func names() []string {
	out := make([]string, 0, len(commands))
	for _, c := range commands {
		out = append(out, c.Name)
	}
	return out
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		cmd := Normalize(m.input.Value())
		m.input.Reset()
		if cmd == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			return CommandMsg(cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	hint := theme.HelpStyle.Render("tab to complete · enter to run · esc to close")

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), hint)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
