package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/travelchat/internal/chat"
	"github.com/diogo/travelchat/internal/models"
)

// Model represents the TUI state
type Model struct {
	ctx      context.Context
	ctrl     *chat.Controller
	notifier *Notifier
	server   string

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	messages []models.Message
	spinning bool
	ready    bool

	// Dimensions
	width  int
	height int
}

// textareaInput adapts the textarea to chat.Input
type textareaInput struct {
	ta *textarea.Model
}

func (t textareaInput) Value() string { return t.ta.Value() }
func (t textareaInput) Clear()        { t.ta.Reset() }

// NewModel creates the chat model. The notifier must be a renderer of the
// controller's conversation.
func NewModel(ctx context.Context, ctrl *chat.Controller, notifier *Notifier, server string) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about destinations, visas, packing..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(currentTheme.Text)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(currentTheme.TextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = pendingStyle

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		notifier: notifier,
		server:   server,
		textarea: ta,
		spinner:  s,
		messages: ctrl.Conversation().Messages(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.notifier.Wait(m.ctx),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter", "ctrl+s":
			return m, m.submit()
		}

	case conversationUpdatedMsg:
		m.refresh()
		return m, tea.Batch(m.notifier.Wait(m.ctx), m.startSpinner())

	case spinner.TickMsg:
		if m.ctrl.Pending() == 0 {
			m.spinning = false
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit hands the textarea to the controller. Enter and ctrl+s both end up
// here.
func (m *Model) submit() tea.Cmd {
	if !m.ctrl.Submit(m.ctx, textareaInput{ta: &m.textarea}) {
		return nil
	}

	m.refresh()
	return m.startSpinner()
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning || m.ctrl.Pending() == 0 {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// refresh redraws from the conversation and keeps the newest message visible
func (m *Model) refresh() {
	m.messages = m.ctrl.Conversation().Messages()
	m.updateViewport()
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsUser() {
			label := userLabelStyle.Render("● You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.DisplayText())
			content.WriteString(label + "\n" + bubble)
		} else {
			label := botLabelStyle.Render("✈ Travel Assistant")
			bubble := botBubbleStyle.Width(bubbleWidth).Render(msg.DisplayText())
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return pendingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	headerContent := lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render("✈ Travel Assistant"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.server),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	var messagesContent string
	if len(m.messages) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	label := inputLabelStyle.Render("You")
	if n := m.ctrl.Pending(); n > 0 {
		label = lipgloss.JoinHorizontal(
			lipgloss.Center,
			label,
			m.spinner.View(),
			hintStyle.Render(fmt.Sprintf(" waiting for %d %s", n, plural(n, "reply", "replies"))),
		)
	}
	inputContent := lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("✈"),
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to Travel Assistant"),
		"",
		welcomeStyle.Width(width).Render("Ask about destinations, visas, packing, flights and more"),
		"",
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+S", "Send"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Run starts the chat TUI and blocks until the user quits. Requests still in
// flight are abandoned without rendering.
func Run(ctx context.Context, ctrl *chat.Controller, notifier *Notifier, server string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer ctrl.Wait()
	defer cancel()

	p := tea.NewProgram(
		NewModel(ctx, ctrl, notifier, server),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
