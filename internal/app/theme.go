package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	appsync "github.com/nhle/sqs-console/internal/sync"
	"github.com/nhle/sqs-console/internal/theme"
)

const appTitle = "SQS Console"

// title returns the header title with the build version.
func (m Model) title() string {
	if m.version == "" {
		return appTitle
	}
	return appTitle + " " + m.version
}

// syncStatus describes the region and the combined refresh state.
func (m Model) syncStatus() string {
	snap := m.syncer.Snapshot()
	state := combinedState(snap.QueuesStatus.State, snap.MessagesStatus.State)

	region := snap.Region
	if region == "" {
		region = "…"
	}
	return "region " + region + " · " + theme.SyncStateStyle(state.String()).Render(state.String())
}

// combinedState reports an error before a running refresh, and a
// running refresh before idle.
func combinedState(states ...appsync.State) appsync.State {
	out := appsync.StateIdle
	for _, s := range states {
		switch s {
		case appsync.StateError:
			return appsync.StateError
		case appsync.StateRunning:
			out = appsync.StateRunning
		}
	}
	return out
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewQueueForm, ViewSendForm:
		return "enter submit | esc cancel"
	case ViewHistory:
		return "j/k scroll | esc back"
	default:
		return renderBindings(m.keys.ShortHelp())
	}
}

// renderBindings joins binding hints, greying out disabled ones.
func renderBindings(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hint := h.Key + " " + h.Desc
		if !b.Enabled() {
			hint = theme.DisabledStyle.Render(hint)
		}
		parts = append(parts, hint)
	}
	return strings.Join(parts, " | ")
}
