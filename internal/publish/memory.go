package publish

import (
	"context"
	"sync"
)

// Memory records published payloads for inspection in tests.
type Memory struct {
	mu       sync.RWMutex
	payloads []any
}

// NewMemory returns an in-memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish records the payload.
func (m *Memory) Publish(_ context.Context, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, payload)
	return nil
}

// Close does nothing.
func (m *Memory) Close() error { return nil }

// Payloads returns the recorded publishes.
func (m *Memory) Payloads() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]any, len(m.payloads))
	copy(out, m.payloads)
	return out
}
