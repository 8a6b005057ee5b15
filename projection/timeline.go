// Package projection builds local timelines from observed events.
// It consumes the fan-out stream and never emits events itself.
package projection

import (
	"context"
	"sync"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/domain/event"
)

// Timeline accumulates the messages one observer saw, in delivery order.
type Timeline struct {
	mu       sync.Mutex
	messages []domain.Message
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	if evt, ok := e.(event.MessagePosted); ok {
		t.mu.Lock()
		t.messages = append(t.messages, fromEvent(evt))
		t.mu.Unlock()
	}
	return nil
}

// Messages returns a copy of everything observed so far.
func (t *Timeline) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Message{}, t.messages...)
}

func fromEvent(evt event.MessagePosted) domain.Message {
	return domain.Message{
		ID:        evt.ID,
		Group:     evt.Group,
		Author:    evt.Author,
		Content:   evt.Content,
		CreatedAt: evt.At,
	}
}
