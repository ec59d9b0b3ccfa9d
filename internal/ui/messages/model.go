package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/theme"
)

// Model is the scrollable message pane of the selected queue.
type Model struct {
	viewport viewport.Model
	header   string
	width    int
	height   int
}

// New creates a message pane.
func New(width, height int) Model {
	vp := viewport.New(width, height-2)
	// j/k and d belong to the queue list, so only paging keys scroll.
	vp.KeyMap = viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
	}
	return Model{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// SetContent redraws the pane for the given state. region is used for
// the empty state when no queue exists.
func (m *Model) SetContent(q *model.Queue, msgs []model.Message, region string) {
	if q == nil {
		m.header = theme.PanelTitleStyle.Render("Messages")
		m.viewport.SetContent(theme.HelpStyle.Render(EmptyText(region)))
		m.viewport.GotoTop()
		return
	}

	m.header = RenderQueueHeader(*q, len(msgs))
	if len(msgs) == 0 {
		m.viewport.SetContent(theme.HelpStyle.Render("No messages in " + q.QueueName))
		return
	}

	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, renderMessage(msg, m.width))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

// Update forwards scrolling keys and mouse events to the viewport.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the pane.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.header, "", m.viewport.View())
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}

// EmptyText is shown when the region has no queues.
func EmptyText(region string) string {
	if region == "" {
		region = model.DefaultRegionLabel
	}
	return "No queues exist in region: " + region
}

// RenderQueueHeader shows the queue name, a FIFO badge and an attribute
// summary.
func RenderQueueHeader(q model.Queue, count int) string {
	title := theme.PanelTitleStyle.Render(q.QueueName)
	if q.IsFifo() {
		title += " " + theme.FifoBadgeStyle.Render("FIFO")
	}
	title += theme.HelpStyle.Render(fmt.Sprintf("  %d shown", count))

	if summary := attributeSummary(q.QueueAttributes); summary != "" {
		return title + "\n" + theme.HelpStyle.Render(summary)
	}
	return title
}

func attributeSummary(a *model.QueueAttributes) string {
	if a == nil {
		return ""
	}
	var parts []string
	add := func(label string, v int, unit string) {
		if v > 0 {
			parts = append(parts, fmt.Sprintf("%s %d%s", label, v, unit))
		}
	}
	add("visibility", a.VisibilityTimeout, "s")
	add("delay", a.DelaySeconds, "s")
	add("retention", a.MessageRetentionPeriod, "s")
	add("wait", a.ReceiveMessageWaitTimeSeconds, "s")
	add("max size", a.MaximumMessageSize, "B")
	if a.ContentBasedDeduplication {
		parts = append(parts, "content dedup")
	}
	return strings.Join(parts, " · ")
}

func renderMessage(msg model.Message, width int) string {
	var meta []string
	if msg.MessageID != "" {
		meta = append(meta, msg.MessageID)
	}
	if ts := formatSentTimestamp(msg.SentTimestamp); ts != "" {
		meta = append(meta, ts)
	}
	if msg.ReceiveCount > 0 {
		meta = append(meta, fmt.Sprintf("received %d×", msg.ReceiveCount))
	}
	if a := msg.Attributes; a != nil {
		if a.MessageGroupID != "" {
			meta = append(meta, "group "+a.MessageGroupID)
		}
		if a.MessageDeduplicationID != "" {
			meta = append(meta, "dedup "+a.MessageDeduplicationID)
		}
	}

	lines := []string{theme.HelpStyle.Render(strings.Join(meta, " · "))}
	if msg.Attributes != nil && len(msg.Attributes.Custom) > 0 {
		keys := make([]string, 0, len(msg.Attributes.Custom))
		for k := range msg.Attributes.Custom {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, theme.HelpStyle.Render(k+"="+msg.Attributes.Custom[k]))
		}
	}
	lines = append(lines, FormatBody(msg.Body))

	style := theme.BorderStyle.Padding(0, 1)
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// FormatBody pretty-prints JSON bodies and returns others unchanged.
func FormatBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if !json.Valid([]byte(trimmed)) || (!strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[")) {
		return body
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(trimmed), "", "  "); err != nil {
		return body
	}
	return buf.String()
}

// formatSentTimestamp converts the epoch-millisecond SentTimestamp
// attribute into local time.
func formatSentTimestamp(ts string) string {
	if ts == "" {
		return ""
	}
	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ts
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}
