package sendform

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/theme"
)

// SubmitMsg is dispatched when the send-message form is completed. Queue
// is the queue the form was opened for.
type SubmitMsg struct {
	Queue   model.Queue
	Message model.Message
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	body         string
	groupID      string
	dedupID      string
	delaySeconds string
	attributes   string
}

// Model is the Bubble Tea model for the send-message form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	queue  model.Queue
	fifo   bool
	newID  func() string
	width  int
	height int
}

// New creates a new send-message form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		newID:  func() string { return uuid.New().String() },
		width:  width,
		height: height,
	}
}

// StartSend resets the form for a message to q. FIFO queues get a fresh
// deduplication id pre-filled.
func (m *Model) StartSend(q model.Queue) tea.Cmd {
	*m.fb = formBindings{}
	m.queue = q
	m.fifo = q.IsFifo()
	if m.fifo {
		m.fb.dedupID = m.newID()
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		out, err := messageFromBindings(*m.fb)
		m.form = nil
		if err != nil {
			return m, func() tea.Msg { return CancelMsg{} }
		}
		q := m.queue
		return m, func() tea.Msg { return SubmitMsg{Queue: q, Message: out} }
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Send Message to " + m.queue.QueueName)
	if m.fifo {
		title += " " + theme.FifoBadgeStyle.Render("FIFO")
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(title + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewText().
			Title("Body").
			Placeholder(`{"hello": "world"}`).
			Value(&m.fb.body),
	}

	if m.fifo {
		fields = append(fields,
			huh.NewInput().
				Title("Message group id").
				Description("Required for FIFO queues").
				Value(&m.fb.groupID),
			huh.NewInput().
				Title("Deduplication id").
				Value(&m.fb.dedupID),
		)
	} else {
		fields = append(fields,
			huh.NewInput().
				Title("Delay seconds").
				Placeholder("0-900 (optional)").
				Value(&m.fb.delaySeconds).
				Validate(validateDelay),
		)
	}

	fields = append(fields,
		huh.NewText().
			Title("Attributes").
			Description("One key=value per line").
			Value(&m.fb.attributes).
			Validate(validateAttributes),
	)

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// messageFromBindings builds the outgoing message. The FIFO group id
// requirement is enforced by the synchronizer, not here.
func messageFromBindings(fb formBindings) (model.Message, error) {
	msg := model.Message{Body: fb.body}

	attrs := model.MessageAttributes{
		MessageGroupID:         strings.TrimSpace(fb.groupID),
		MessageDeduplicationID: strings.TrimSpace(fb.dedupID),
	}

	if s := strings.TrimSpace(fb.delaySeconds); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return model.Message{}, fmt.Errorf("delay seconds: %q is not a whole number", s)
		}
		attrs.DelaySeconds = n
	}

	custom, err := parseAttributes(fb.attributes)
	if err != nil {
		return model.Message{}, err
	}
	attrs.Custom = custom

	if attrs.MessageGroupID != "" || attrs.MessageDeduplicationID != "" ||
		attrs.DelaySeconds != 0 || len(attrs.Custom) > 0 {
		msg.Attributes = &attrs
	}
	return msg, nil
}

// parseAttributes reads "key=value" lines. Blank lines are skipped.
func parseAttributes(s string) (map[string]string, error) {
	var out map[string]string
	for i, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("line %d: expected key=value", i+1)
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

func validateAttributes(s string) error {
	_, err := parseAttributes(s)
	return err
}

func validateDelay(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 900 {
		return fmt.Errorf("delay must be a whole number between 0 and 900")
	}
	return nil
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}
