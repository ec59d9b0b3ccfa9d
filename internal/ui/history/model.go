// Package history lists the notifications raised during this session.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/store"
	"github.com/nhle/sqs-console/internal/theme"
)

// DefaultLimit is the number of rows loaded into the view.
const DefaultLimit = 200

// Source reads the session history.
type Source interface {
	GetNotificationHistory(ctx context.Context, filter store.HistoryFilter) ([]model.NotificationRecord, error)
	CountNotifications(ctx context.Context, filter store.HistoryFilter) (int, error)
}

// LoadedMsg carries the result of Load. Total counts the whole session,
// which may exceed len(Records).
type LoadedMsg struct {
	Records []model.NotificationRecord
	Total   int
	Err     error
}

// CloseMsg is sent when the user leaves the view.
type CloseMsg struct{}

// Load returns a command that reads the most recent history entries and
// the session total.
func Load(src Source) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		records, err := src.GetNotificationHistory(ctx, store.HistoryFilter{Limit: DefaultLimit})
		if err != nil {
			return LoadedMsg{Err: err}
		}
		total, err := src.CountNotifications(ctx, store.HistoryFilter{})
		if err != nil {
			return LoadedMsg{Err: fmt.Errorf("counting history: %w", err)}
		}
		return LoadedMsg{Records: records, Total: total}
	}
}

// Model is the notification history view.
type Model struct {
	table   table.Model
	count   int
	total   int
	loading bool
	err     error
	width   int
	height  int
}

// New creates a history view.
func New(width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(height-4),
	)
	return Model{table: t, width: width, height: height}
}

// SetLoading marks the view as waiting for a LoadedMsg.
func (m *Model) SetLoading() {
	m.loading = true
	m.err = nil
}

// Update handles loaded records, navigation and closing.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			m.table.SetRows(Rows(msg.Records))
			m.table.GotoTop()
			m.count = len(msg.Records)
			m.total = max(msg.Total, m.count)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, closeKeys) {
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

var closeKeys = key.NewBinding(key.WithKeys("esc", "h"))

// View renders the table.
func (m Model) View() string {
	label := fmt.Sprintf("Notification history (%d)", m.count)
	if m.total > m.count {
		label = fmt.Sprintf("Notification history (latest %d of %d)", m.count, m.total)
	}
	title := theme.PanelTitleStyle.Render(label)

	var body string
	switch {
	case m.loading:
		body = theme.HelpStyle.Render("Loading...")
	case m.err != nil:
		body = lipgloss.NewStyle().Foreground(theme.ColorRed).Render("Could not load history: " + m.err.Error())
	case m.count == 0:
		body = theme.HelpStyle.Render("No notifications yet")
	default:
		body = m.table.View()
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(height - 4)
}

func columns(width int) []table.Column {
	msgWidth := width - 8 - 10 - 10 - 12
	if msgWidth < 20 {
		msgWidth = 20
	}
	return []table.Column{
		{Title: "Time", Width: 8},
		{Title: "Severity", Width: 10},
		{Title: "Message", Width: msgWidth},
		{Title: "Removed", Width: 10},
	}
}

// Rows converts records into table rows, preserving their order.
func Rows(records []model.NotificationRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.CreatedAt.Local().Format(time.TimeOnly),
			r.Severity,
			r.Message,
			removal(r),
		})
	}
	return rows
}

func removal(r model.NotificationRecord) string {
	if r.Active() {
		return "active"
	}
	return r.RemovalReason
}
