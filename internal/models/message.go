package models

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Origin tags who authored a message
type Origin string

const (
	OriginUser Origin = "user"
	OriginBot  Origin = "bot"
)

// String returns the origin name
func (o Origin) String() string {
	return string(o)
}

// Message represents a single entry in the conversation view
type Message struct {
	Text   string
	Origin Origin

	// Failed marks the bot message standing in for a reply that could not be retrieved
	Failed bool
}

// NewUserMessage builds a user message from raw input.
// The boolean is false when the input is blank after trimming.
func NewUserMessage(input string) (Message, bool) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Message{}, false
	}
	return Message{Text: text, Origin: OriginUser}, true
}

// NewBotMessage builds a bot message; text is kept verbatim
func NewBotMessage(text string) Message {
	return Message{Text: text, Origin: OriginBot}
}

// FallbackMessage is the bot message shown when a reply cannot be retrieved
func FallbackMessage() Message {
	msg := NewBotMessage(FallbackReply)
	msg.Failed = true
	return msg
}

// IsUser reports whether the message was typed by the user
func (m Message) IsUser() bool {
	return m.Origin == OriginUser
}

// DisplayText returns the text safe to write to a terminal.
// Escape and control sequences are stripped; newlines and tabs survive.
func (m Message) DisplayText() string {
	stripped := ansi.Strip(m.Text)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, stripped)
}
