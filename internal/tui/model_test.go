package tui

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/travelchat/internal/api"
	"github.com/diogo/travelchat/internal/chat"
	apierrors "github.com/diogo/travelchat/internal/errors"
	"github.com/diogo/travelchat/internal/models"
)

func newTestModel(t *testing.T, ctx context.Context, sender chat.Sender, width, height int) (Model, *chat.Controller) {
	t.Helper()
	n := NewNotifier()
	ctrl := chat.NewController(chat.NewConversation(n), sender)
	m := NewModel(ctx, ctrl, n, "http://127.0.0.1:5000")

	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return updated.(Model), ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	typed, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return typed, cmd
}

// settle waits for outstanding replies and delivers the redraw they queued
func settle(t *testing.T, m Model, ctrl *chat.Controller) Model {
	t.Helper()
	ctrl.Wait()
	m, _ = update(t, m, conversationUpdatedMsg{})
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	ctrlSKey = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func TestModel_Update_WindowSize(t *testing.T) {
	m, _ := newTestModel(t, context.Background(), &api.MockClient{}, 100, 40)

	if !m.ready {
		t.Fatal("Model should be ready after WindowSizeMsg")
	}
	if m.width != 100 || m.height != 40 {
		t.Errorf("dimensions = %dx%d, want 100x40", m.width, m.height)
	}
	if m.viewport.Width != 96 {
		t.Errorf("viewport width = %d, want 96", m.viewport.Width)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 10})
	if m.viewport.Height != 5 {
		t.Errorf("viewport height = %d, want minimum 5", m.viewport.Height)
	}
}

func TestModel_Update_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEscape}} {
		m, _ := newTestModel(t, context.Background(), &api.MockClient{}, 80, 24)
		if _, cmd := update(t, m, key); !isQuit(cmd) {
			t.Errorf("%s should quit", key.String())
		}
	}
}

func TestModel_QuitWordsAreSent(t *testing.T) {
	for _, word := range []string{"exit", "quit", "/exit", " /quit "} {
		sender := &api.MockClient{Reply: "Come back soon!"}
		m, ctrl := newTestModel(t, context.Background(), sender, 80, 24)
		m.textarea.SetValue(word)

		_, cmd := update(t, m, enterKey)
		if isQuit(cmd) {
			t.Errorf("%q should be sent, not end the session", word)
		}
		ctrl.Wait()

		if got := sender.Messages(); len(got) != 1 || got[0] != strings.TrimSpace(word) {
			t.Errorf("sent %v, want [%s]", got, strings.TrimSpace(word))
		}
		msgs := ctrl.Conversation().Messages()
		if len(msgs) != 2 || !msgs[0].IsUser() || msgs[0].Text != strings.TrimSpace(word) {
			t.Errorf("%q: conversation = %+v", word, msgs)
		}
	}
}

func TestModel_EnterAndCtrlSProduceSameView(t *testing.T) {
	sender := &api.MockClient{Reply: "Bon voyage!"}

	byEnter, enterCtrl := newTestModel(t, context.Background(), sender, 100, 40)
	byEnter.textarea.SetValue("  Hello  ")
	byEnter, _ = update(t, byEnter, enterKey)
	byEnter = settle(t, byEnter, enterCtrl)

	byCtrlS, ctrlSCtrl := newTestModel(t, context.Background(), sender, 100, 40)
	byCtrlS.textarea.SetValue("  Hello  ")
	byCtrlS, _ = update(t, byCtrlS, ctrlSKey)
	byCtrlS = settle(t, byCtrlS, ctrlSCtrl)

	want := []models.Message{
		{Text: "Hello", Origin: models.OriginUser},
		{Text: "Bon voyage!", Origin: models.OriginBot},
	}
	if !reflect.DeepEqual(byEnter.messages, want) {
		t.Errorf("enter messages = %+v, want %+v", byEnter.messages, want)
	}
	if !reflect.DeepEqual(byCtrlS.messages, want) {
		t.Errorf("ctrl+s messages = %+v, want %+v", byCtrlS.messages, want)
	}
	if byEnter.textarea.Value() != "" || byCtrlS.textarea.Value() != "" {
		t.Error("input should be cleared after submit")
	}
	if byEnter.View() != byCtrlS.View() {
		t.Error("enter and ctrl+s should leave identical views")
	}
}

func TestModel_BlankInputIsNoop(t *testing.T) {
	sender := &api.MockClient{Reply: "unused"}
	m, ctrl := newTestModel(t, context.Background(), sender, 80, 24)
	m.textarea.SetValue("   ")

	m, cmd := update(t, m, enterKey)
	if cmd != nil {
		t.Error("blank submit should not return a command")
	}
	if m.textarea.Value() != "   " {
		t.Errorf("input should be untouched, got %q", m.textarea.Value())
	}
	if len(m.messages) != 0 || len(ctrl.Conversation().Messages()) != 0 {
		t.Error("blank submit should not add messages")
	}
	if sender.Calls() != 0 {
		t.Error("blank submit should not send")
	}
}

func TestModel_UserMessageShownWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sender := &api.MockClient{Reply: "late", Delay: time.Hour}
	m, ctrl := newTestModel(t, ctx, sender, 100, 40)

	m.textarea.SetValue("Where should I travel?")
	m, cmd := update(t, m, enterKey)

	if len(m.messages) != 1 || !m.messages[0].IsUser() {
		t.Fatalf("expected the user message right away, got %+v", m.messages)
	}
	if cmd == nil {
		t.Error("expected the spinner to start")
	}
	if ctrl.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", ctrl.Pending())
	}
	if !strings.Contains(m.View(), "waiting for 1 reply") {
		t.Error("view should show the pending reply")
	}

	// the input stays usable while a reply is outstanding
	m.textarea.SetValue("Visa requirements")
	m, _ = update(t, m, ctrlSKey)
	if len(m.messages) != 2 {
		t.Errorf("second submit while waiting: got %d messages", len(m.messages))
	}

	cancel()
	ctrl.Wait()
	if len(ctrl.Conversation().Messages()) != 2 {
		t.Errorf("cancelled requests should not render, got %d messages", len(ctrl.Conversation().Messages()))
	}
}

func TestModel_FailureShowsFallback(t *testing.T) {
	sender := &api.MockClient{Err: apierrors.NewNetworkErrorWithEndpoint("send message", "http://127.0.0.1:5000/chat", errors.New("connection refused"))}
	m, ctrl := newTestModel(t, context.Background(), sender, 100, 40)

	m.textarea.SetValue("Hello")
	m, _ = update(t, m, enterKey)
	m = settle(t, m, ctrl)

	if len(m.messages) != 2 || m.messages[1] != models.FallbackMessage() {
		t.Fatalf("expected fallback reply, got %+v", m.messages)
	}
	if strings.Contains(m.View(), "connection refused") {
		t.Error("the failure cause must not be shown")
	}
}

func TestModel_ScrolledToBottomAfterEveryAppend(t *testing.T) {
	sender := &api.MockClient{ReplyFunc: func(_ context.Context, msg string) (string, error) {
		return "reply to " + msg, nil
	}}
	m, ctrl := newTestModel(t, context.Background(), sender, 80, 20)

	for i := 0; i < 8; i++ {
		m.textarea.SetValue(fmt.Sprintf("message %d", i))
		m, _ = update(t, m, enterKey)
		if !m.viewport.AtBottom() {
			t.Fatalf("not at bottom after user message %d", i)
		}
		m = settle(t, m, ctrl)
		if !m.viewport.AtBottom() {
			t.Fatalf("not at bottom after reply %d", i)
		}
	}

	if m.viewport.YOffset == 0 {
		t.Error("expected the conversation to overflow the viewport")
	}
}

func TestModel_View(t *testing.T) {
	n := NewNotifier()
	ctrl := chat.NewController(chat.NewConversation(n), &api.MockClient{})
	m := NewModel(context.Background(), ctrl, n, "http://127.0.0.1:5000")

	if !strings.Contains(m.View(), "Initializing") {
		t.Error("expected initializing view before the first resize")
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	for _, want := range []string{"Welcome to Travel Assistant", "http://127.0.0.1:5000", "Ctrl+S", "Enter"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_SpinnerStopsWhenIdle(t *testing.T) {
	m, _ := newTestModel(t, context.Background(), &api.MockClient{}, 80, 24)
	m.spinning = true

	m, cmd := update(t, m, m.spinner.Tick())
	if cmd != nil {
		t.Error("spinner should not tick without pending requests")
	}
	if m.spinning {
		t.Error("spinning should be cleared")
	}
}

func TestNotifier_CoalescesRedraws(t *testing.T) {
	n := NewNotifier()
	for i := 0; i < 3; i++ {
		n.Render(models.NewBotMessage("x"))
	}

	if _, ok := n.Wait(context.Background())().(conversationUpdatedMsg); !ok {
		t.Fatal("expected a queued redraw")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if msg := n.Wait(ctx)(); msg != nil {
		t.Errorf("expected no further redraw, got %T", msg)
	}
}

func TestApplyTheme(t *testing.T) {
	defer ApplyTheme(TokyoNight.Name)

	if !ApplyTheme("nord") {
		t.Fatal("ApplyTheme(nord) should succeed")
	}
	if CurrentTheme().Name != "nord" {
		t.Errorf("CurrentTheme() = %s, want nord", CurrentTheme().Name)
	}
	if ApplyTheme("solarized") {
		t.Error("unknown theme should be rejected")
	}
	if CurrentTheme().Name != "nord" {
		t.Error("unknown theme should keep the current theme")
	}
	if got := ThemeNames(); !reflect.DeepEqual(got, []string{"tokyonight", "catppuccin", "nord"}) {
		t.Errorf("ThemeNames() = %v", got)
	}
}

func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("FormatError(nil) should be empty")
	}

	out := FormatError(apierrors.NewNetworkErrorWithEndpoint("send message", "http://127.0.0.1:5000/chat", errors.New("refused")))
	if !strings.Contains(out, "travelchat serve") {
		t.Errorf("network error should carry a hint: %q", out)
	}

	out = FormatError(apierrors.NewAPIErrorWithBody(502, "/chat", "bad gateway", "upstream down"))
	if !strings.Contains(out, "502") || !strings.Contains(out, "upstream down") {
		t.Errorf("API error details missing: %q", out)
	}
}
