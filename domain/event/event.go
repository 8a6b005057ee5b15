// Package event defines the domain events flowing from group workers to
// connection sinks. Events are immutable snapshots; sinks must not retain
// references past Consume.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
)

// DomainEvent is a marker for everything carried by the fan-out path.
type DomainEvent interface {
	EventGroup() domain.GroupID
}

// MessagePosted is broadcast to every connection bound to a group once the
// message is durably stored. The timestamp is the absolute UTC instant;
// zone conversion happens in each recipient's connection handler.
type MessagePosted struct {
	ID        uuid.UUID
	Group     domain.GroupID
	Author    string
	AvatarURL string
	Content   string
	At        time.Time
}

func (e MessagePosted) EventGroup() domain.GroupID {
	return e.Group
}
