package http

import (
	"context"
	"fmt"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain/event"
)

// Sink bridges the group worker's fan-out to one websocket connection.
// The write pump owns the receiving end of the channel.
type Sink struct {
	events chan event.DomainEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{events: make(chan event.DomainEvent, bufferSize)}
}

func (s *Sink) Events() <-chan event.DomainEvent {
	return s.events
}

// Consume is called by the group worker's fan-out loop. A full buffer means
// this connection's write pump is not keeping up; the event is dropped for
// this connection only and the error lets the worker count it.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("sink buffer full")
	}
}
