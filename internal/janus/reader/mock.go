package reader

import (
	"context"
	"sync"
)

// MockSource is a scriptable Source for dev mode and tests. Queued UIDs
// are returned in order; an empty queue reads as ErrNoCard. When
// Default is set and the queue is empty, every read returns Default,
// mimicking a card left sitting on the reader.
type MockSource struct {
	mu      sync.Mutex
	queue   []string
	Default string
}

func NewMockSource(uids ...string) *MockSource {
	return &MockSource{queue: uids}
}

// Present queues a UID for the next read.
func (m *MockSource) Present(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, uid)
}

func (m *MockSource) ReadUID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) > 0 {
		uid := m.queue[0]
		m.queue = m.queue[1:]
		return uid, nil
	}
	if m.Default != "" {
		return m.Default, nil
	}
	return "", ErrNoCard
}
