// Package domain contains core concepts of the study-session system.
// This file defines Message events and related rules.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat message inside one session group.
// CreatedAt is the authoritative server timestamp, always UTC and
// monotonically non-decreasing within a group in insertion order.
type Message struct {
	ID        uuid.UUID
	Group     GroupID
	Author    string
	Content   string
	CreatedAt time.Time
}
