// Package runtime owns connection fan-out and the serialized per-group
// broadcast path. It routes events without containing domain rules.
package runtime

import (
	"sync"

	"github.com/Alex-SA1/Efficient-Study-Platform/contract"
	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
)

type Set map[string]struct{}

// ConnRegistry maps live connections to their session group. A connection is
// bound to exactly one group and one sink for its whole lifetime.
type ConnRegistry struct {
	mu         sync.RWMutex
	sinks      map[string]contract.EventSink // connection id -> sink
	groupConns map[domain.GroupID]Set        // group -> connection ids
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		sinks:      make(map[string]contract.EventSink),
		groupConns: make(map[domain.GroupID]Set),
	}
}

// SinksFor retrieves all active sinks for a group, resolving connection ids
// through the global sink directory. Returns nil for an unknown or empty
// group.
func (r *ConnRegistry) SinksFor(group domain.GroupID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns, ok := r.groupConns[group]
	if !ok {
		return nil
	}
	var active []contract.EventSink
	for connID := range conns {
		if sink, exists := r.sinks[connID]; exists {
			active = append(active, sink)
		}
	}
	return active
}

// Subscribe registers a live connection and binds it to its group,
// initializing the group set on first use.
func (r *ConnRegistry) Subscribe(connID string, group domain.GroupID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sinks[connID] = sink
	if _, ok := r.groupConns[group]; !ok {
		r.groupConns[group] = make(Set)
	}
	r.groupConns[group][connID] = struct{}{}
}

// Unsubscribe releases a connection unconditionally. After it returns the
// connection can receive no further broadcasts. Empty group sets are removed
// so the map does not leak across many short-lived sessions.
func (r *ConnRegistry) Unsubscribe(connID string, group domain.GroupID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sinks, connID)
	if conns, ok := r.groupConns[group]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.groupConns, group)
		}
	}
}
