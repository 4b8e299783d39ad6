package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/travelchat/internal/chat"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorWarning  = lipgloss.Color("#f7768e")
	colorPrimary  = lipgloss.Color("#7aa2f7")
)

// Styles matching the chat TUI
var (
	botLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	botBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Foreground(colorText).
			Padding(0, 1).
			MarginBottom(1)
)

// queryOptions are the flags of a one-shot query
type queryOptions struct {
	file string
	raw  bool
	copy bool
}

// spinner handles the animated loading indicator
type spinner struct {
	w       io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner drawing on w
func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{
		w:       w,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.w, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.w, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.w, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.w, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner without a message
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// runQuery sends a single message through the chat controller and prints the
// reply. Raw output, or stdout that is not a terminal, prints only the text.
func runQuery(ctx context.Context, deps *Dependencies, opts *globalOptions, q *queryOptions, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message cannot be empty")
	}

	cfg, err := opts.resolve(deps)
	if err != nil {
		return err
	}
	mode, err := chat.ParseDispatchMode(cfg.Dispatch)
	if err != nil {
		return err
	}

	logger, logCloser := openLog(cfg, deps.Stderr)
	defer logCloser.Close()

	sender, err := deps.NewSender(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer closeSender(sender)

	ctrl := chat.NewController(chat.NewConversation(), sender,
		chat.WithLogger(logger),
		chat.WithDispatch(mode),
	)

	raw := q.raw || !deps.StdoutIsTTY()

	var spin *spinner
	if !raw {
		spin = newSpinner(deps.Stderr, "Asking the travel assistant")
		spin.start()
	}

	start := time.Now()
	ctrl.SubmitText(ctx, message)
	ctrl.Wait()

	reply, ok := ctrl.Conversation().Last()
	if !ok || reply.IsUser() {
		// cancelled before a reply arrived
		if spin != nil {
			spin.stopWithError()
		}
		return ctx.Err()
	}
	failed := reply.Failed

	if spin != nil {
		if failed {
			spin.stopWithError()
		} else {
			spin.stopWithSuccess("Done")
		}
	}
	if cfg.Verbose && !raw {
		fmt.Fprintf(deps.Stderr, "[verbose] Request took %s\n", time.Since(start).Round(time.Millisecond))
	}

	text := reply.DisplayText()
	if raw {
		fmt.Fprintln(deps.Stdout, text)
	} else {
		bubbleWidth := getTerminalWidth() - 4
		if bubbleWidth < 40 {
			bubbleWidth = 40
		}
		if bubbleWidth > 120 {
			bubbleWidth = 120
		}
		fmt.Fprintln(deps.Stdout, botLabelStyle.Render("✈ Travel Assistant"))
		fmt.Fprintln(deps.Stdout, botBubbleStyle.Width(bubbleWidth).Render(text))
	}

	if failed {
		return errNoReply
	}

	if q.copy || cfg.CopyToClipboard {
		if err := deps.Clipboard(reply.Text); err != nil {
			// Log warning but don't fail
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorWarning).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			))
		} else if !raw {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	return nil
}
