package api

import (
	"context"
	"sync"
	"time"
)

// MockClient is an in-memory Sender for testing code that sits above the API client
type MockClient struct {
	// Reply and Err are returned when ReplyFunc is nil
	Reply string
	Err   error

	// ReplyFunc, when set, decides the outcome per message
	ReplyFunc func(ctx context.Context, message string) (string, error)

	// Delay is waited before answering; a cancelled context cuts it short
	Delay time.Duration

	mu       sync.Mutex
	messages []string
}

// Send records message and returns the configured outcome
func (m *MockClient) Send(ctx context.Context, message string) (string, error) {
	m.mu.Lock()
	m.messages = append(m.messages, message)
	m.mu.Unlock()

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, message)
	}
	return m.Reply, m.Err
}

// Messages returns every message sent so far, in call order
func (m *MockClient) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// Calls returns how many times Send was called
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}
