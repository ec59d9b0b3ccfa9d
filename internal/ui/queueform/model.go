package queueform

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/theme"
)

// SubmitMsg is dispatched when the create-queue form is completed.
type SubmitMsg struct {
	Queue model.Queue
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name              string
	delaySeconds      string
	visibilityTimeout string
	retentionPeriod   string
	maxMessageSize    string
	waitTimeSeconds   string
	contentDedup      bool
}

// Model is the Bubble Tea model for the create-queue form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a new create-queue form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate resets the form for a new queue.
func (m *Model) StartCreate() tea.Cmd {
	*m.fb = formBindings{}
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
		q, err := queueFromBindings(*m.fb)
		if err != nil {
			// Field validators make this unreachable; reopen the form.
			return m, m.StartCreate()
		}
		m.form = nil
		return m, func() tea.Msg { return SubmitMsg{Queue: q} }
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

	content := titleStyle.Render("New Queue") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Queue name").
				Description("Use the " + model.FifoSuffix + " suffix for a FIFO queue").
				Placeholder("orders or orders.fifo").
				Value(&m.fb.name).
				Validate(validateRequired("Queue name")),
			huh.NewInput().
				Title("Delay seconds").
				Placeholder("0-900 (optional)").
				Value(&m.fb.delaySeconds).
				Validate(validateOptionalInt),
			huh.NewInput().
				Title("Visibility timeout").
				Placeholder("0-43200 seconds (optional)").
				Value(&m.fb.visibilityTimeout).
				Validate(validateOptionalInt),
			huh.NewInput().
				Title("Message retention period").
				Placeholder("60-1209600 seconds (optional)").
				Value(&m.fb.retentionPeriod).
				Validate(validateOptionalInt),
			huh.NewInput().
				Title("Maximum message size").
				Placeholder("1024-262144 bytes (optional)").
				Value(&m.fb.maxMessageSize).
				Validate(validateOptionalInt),
			huh.NewInput().
				Title("Receive wait time").
				Placeholder("0-20 seconds (optional)").
				Value(&m.fb.waitTimeSeconds).
				Validate(validateOptionalInt),
			huh.NewConfirm().
				Title("Content-based deduplication").
				Description("FIFO queues only").
				Value(&m.fb.contentDedup),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// queueFromBindings builds the queue definition. Range checks are left
// to model.ValidateQueue.
func queueFromBindings(fb formBindings) (model.Queue, error) {
	q := model.Queue{QueueName: strings.TrimSpace(fb.name)}

	var attrs model.QueueAttributes
	fields := []struct {
		raw string
		dst *int
	}{
		{fb.delaySeconds, &attrs.DelaySeconds},
		{fb.visibilityTimeout, &attrs.VisibilityTimeout},
		{fb.retentionPeriod, &attrs.MessageRetentionPeriod},
		{fb.maxMessageSize, &attrs.MaximumMessageSize},
		{fb.waitTimeSeconds, &attrs.ReceiveMessageWaitTimeSeconds},
	}

	set := false
	for _, f := range fields {
		n, ok, err := parseOptionalInt(f.raw)
		if err != nil {
			return model.Queue{}, err
		}
		if ok {
			*f.dst = n
			set = true
		}
	}
	if fb.contentDedup && q.IsFifo() {
		attrs.ContentBasedDeduplication = true
		set = true
	}
	if set {
		q.QueueAttributes = &attrs
	}
	return q, nil
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

func parseOptionalInt(s string) (int, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%q is not a whole number", s)
	}
	return n, true, nil
}

func validateOptionalInt(s string) error {
	_, _, err := parseOptionalInt(s)
	return err
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
