// Package chat implements the chat widget controller: it turns submitted
// input into a user message, one backend round trip, and a bot message.
package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/travelchat/internal/errors"
	"github.com/diogo/travelchat/internal/models"
)

// Input is the text field the controller reads from and clears
type Input interface {
	Value() string
	Clear()
}

// Sender performs the backend round trip
type Sender interface {
	Send(ctx context.Context, message string) (string, error)
}

// Controller wires an Input, a Sender and a Conversation together
type Controller struct {
	conv   *Conversation
	sender Sender
	logger zerolog.Logger
	mode   DispatchMode

	// tail is closed when the most recently queued serial request finishes
	queueMu sync.Mutex
	tail    chan struct{}
	wg      sync.WaitGroup
	pending atomic.Int64
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the diagnostic logger that receives failure causes
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithDispatch selects how concurrent submissions are dispatched
func WithDispatch(mode DispatchMode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

// NewController creates a controller appending to conv and sending through sender
func NewController(conv *Conversation, sender Sender, opts ...Option) *Controller {
	c := &Controller{
		conv:   conv,
		sender: sender,
		logger: zerolog.Nop(),
		mode:   DispatchConcurrent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Conversation returns the conversation the controller appends to
func (c *Controller) Conversation() *Conversation {
	return c.conv
}

// Mode returns how the controller dispatches requests
func (c *Controller) Mode() DispatchMode {
	return c.mode
}

// Submit takes the current input and starts one exchange.
// Blank input is ignored and left untouched; the return value reports
// whether a message was sent. The reply is appended asynchronously.
func (c *Controller) Submit(ctx context.Context, in Input) bool {
	msg, ok := models.NewUserMessage(in.Value())
	if !ok {
		return false
	}

	c.conv.Append(msg)
	in.Clear()
	c.dispatch(ctx, msg.Text)
	return true
}

// SubmitText is Submit for callers that already hold the text, such as one-shot queries
func (c *Controller) SubmitText(ctx context.Context, text string) bool {
	return c.Submit(ctx, &staticInput{value: text})
}

// Pending returns how many requests are still outstanding
func (c *Controller) Pending() int {
	return int(c.pending.Load())
}

// Wait blocks until every outstanding request has been answered and rendered
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) dispatch(ctx context.Context, text string) {
	c.wg.Add(1)
	c.pending.Add(1)

	if c.mode == DispatchSerial {
		c.queueMu.Lock()
		prev := c.tail
		next := make(chan struct{})
		c.tail = next
		c.queueMu.Unlock()

		go func() {
			defer c.done()
			defer close(next)
			if prev != nil {
				select {
				case <-prev:
				case <-ctx.Done():
				}
			}
			if err := ctx.Err(); err != nil {
				c.logger.Debug().Err(err).Msg("queued request abandoned")
				return
			}
			c.exchange(ctx, text)
		}()
		return
	}

	go func() {
		defer c.done()
		c.exchange(ctx, text)
	}()
}

func (c *Controller) done() {
	c.pending.Add(-1)
	c.wg.Done()
}

// exchange performs one round trip and appends its outcome
func (c *Controller) exchange(ctx context.Context, text string) {
	reply, err := c.sender.Send(ctx, text)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			c.logger.Debug().Err(err).Msg("request cancelled during shutdown")
			return
		}
		c.logger.Error().
			Err(err).
			Str("kind", apierrors.Kind(err)).
			Int("status", apierrors.GetHTTPStatus(err)).
			Msg("failed to retrieve chat response")
		c.conv.Append(models.FallbackMessage())
		return
	}

	c.conv.Append(models.NewBotMessage(reply))
}

// staticInput is an Input holding a fixed value
type staticInput struct {
	value string
}

func (s *staticInput) Value() string { return s.value }
func (s *staticInput) Clear()        { s.value = "" }
