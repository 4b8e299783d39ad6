package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/travelchat/internal/models"
)

// conversationUpdatedMsg tells the model to redraw from the conversation
type conversationUpdatedMsg struct{}

// Notifier is the chat.Renderer of the TUI. Render never blocks: appends made
// while a redraw is already queued collapse into that redraw, and the model
// reads the full conversation when it handles it.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier creates a Notifier
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Render queues a redraw
func (n *Notifier) Render(models.Message) {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// Wait returns a command that resolves on the next queued redraw, or to nil
// once ctx is done.
func (n *Notifier) Wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-n.ch:
			return conversationUpdatedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}
