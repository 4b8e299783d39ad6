package chat

import (
	"sync"

	"github.com/diogo/travelchat/internal/models"
)

// Renderer projects conversation appends onto a visual surface.
// Render is called once per append, in append order, and must leave the
// rendered message fully visible. It must not block.
type Renderer interface {
	Render(msg models.Message)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(msg models.Message)

// Render calls f(msg)
func (f RendererFunc) Render(msg models.Message) {
	f(msg)
}

// Conversation is the ordered, append-only record of a chat session
type Conversation struct {
	mu        sync.Mutex
	messages  []models.Message
	renderers []Renderer
}

// NewConversation creates an empty conversation projecting onto renderers
func NewConversation(renderers ...Renderer) *Conversation {
	return &Conversation{renderers: renderers}
}

// Append adds msg as the newest entry and renders it.
// Rendering happens under the lock so renderers observe appends in list order.
func (c *Conversation) Append(msg models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, msg)
	for _, r := range c.renderers {
		r.Render(msg)
	}
}

// Messages returns a snapshot of the conversation, oldest first
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message(nil), c.messages...)
}

// Last returns the newest message, if any
func (c *Conversation) Last() (models.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return models.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}
