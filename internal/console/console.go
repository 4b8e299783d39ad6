// Package console runs the chat in line mode: one message per input line,
// messages printed as they are appended.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/travelchat/internal/chat"
	"github.com/diogo/travelchat/internal/models"
)

const maxLineBytes = 1 << 20

var (
	userLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true)
	botLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Bold(true)
)

// Printer is a chat.Renderer writing one line per message
type Printer struct {
	w   io.Writer
	raw bool
}

// NewPrinter creates a Printer. Raw printers write plain "you:" and "bot:"
// prefixes without styling.
func NewPrinter(w io.Writer, raw bool) *Printer {
	return &Printer{w: w, raw: raw}
}

// Render prints msg. Calls are serialized by the conversation.
func (p *Printer) Render(msg models.Message) {
	label := "bot:"
	style := botLabelStyle
	if msg.IsUser() {
		label = "you:"
		style = userLabelStyle
	}
	if !p.raw {
		label = style.Render(label)
	}
	fmt.Fprintf(p.w, "%s %s\n", label, msg.DisplayText())
}

// Run submits every line of r until EOF or until ctx is done, and then waits
// for the outstanding replies.
func Run(ctx context.Context, r io.Reader, ctrl *chat.Controller) error {
	defer ctrl.Wait()

	// the reader stops on return; in-flight replies still use ctx
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			ctrl.SubmitText(ctx, line)
		}
	}
}

