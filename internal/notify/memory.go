package notify

import (
	"context"
	"sync"
)

// Memory records notifications for inspection in tests.
type Memory struct {
	mu       sync.RWMutex
	messages []string
}

// NewMemory returns a Memory notifier.
func NewMemory() *Memory {
	return &Memory{}
}

// Notify records the message.
func (m *Memory) Notify(_ context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

// Messages returns the recorded notifications.
func (m *Memory) Messages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}
