package whatsapp

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type mockRepository struct {
	mu       sync.Mutex
	messages map[string]*Message
	events   []StatusEvent

	appendErrs []error
	calls      int
}

func newMockRepository() *mockRepository {
	return &mockRepository{messages: make(map[string]*Message)}
}

func (m *mockRepository) WithinTransaction(ctx context.Context, fn func(repo Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	statuses := make(map[string]string, len(m.messages))
	for id, msg := range m.messages {
		statuses[id] = msg.Status
	}
	count := len(m.events)

	if err := fn(m); err != nil {
		for id, status := range statuses {
			m.messages[id].Status = status
		}
		m.events = m.events[:count]
		return err
	}
	return nil
}

func (m *mockRepository) CreateMessage(ctx context.Context, message *Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	copied := *message
	m.messages[message.ID] = &copied
	return nil
}

func (m *mockRepository) AppendStatusEvent(ctx context.Context, event *StatusEvent) error {
	m.calls++
	if len(m.appendErrs) > 0 {
		err := m.appendErrs[0]
		m.appendErrs = m.appendErrs[1:]
		if err != nil {
			return err
		}
	}
	event.ID = uint(len(m.events) + 1)
	m.events = append(m.events, *event)
	return nil
}

func (m *mockRepository) MirrorStatus(ctx context.Context, messageID, status string) (bool, error) {
	msg, ok := m.messages[messageID]
	if !ok {
		return false, nil
	}
	msg.Status = status
	return true, nil
}
