// Package observability aggregates runtime counters for logging and the
// debug inspector. Counters are updated lock-free from the hot paths.
package observability

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of the chat core.
type Stats struct {
	ConnectionsOpen     int64  `json:"connections_open"`
	SessionsCreated     uint64 `json:"sessions_created"`
	Joins               uint64 `json:"joins"`
	Leaves              uint64 `json:"leaves"`
	MessagesStored      uint64 `json:"messages_stored"`
	StoreFailures       uint64 `json:"store_failures"`
	BroadcastsDelivered uint64 `json:"broadcasts_delivered"`
	BroadcastsDropped   uint64 `json:"broadcasts_dropped"`
	PurgesFailed        uint64 `json:"purges_failed"`
}

// Monitor carries the atomic counters behind Stats.
type Monitor struct {
	startedAt time.Time

	connectionsOpen     atomic.Int64
	sessionsCreated     atomic.Uint64
	joins               atomic.Uint64
	leaves              atomic.Uint64
	messagesStored      atomic.Uint64
	storeFailures       atomic.Uint64
	broadcastsDelivered atomic.Uint64
	broadcastsDropped   atomic.Uint64
	purgesFailed        atomic.Uint64
}

func NewMonitor() *Monitor {
	return &Monitor{startedAt: time.Now()}
}

func (m *Monitor) ConnOpened()      { m.connectionsOpen.Add(1) }
func (m *Monitor) ConnClosed()      { m.connectionsOpen.Add(-1) }
func (m *Monitor) IncrSessions()    { m.sessionsCreated.Add(1) }
func (m *Monitor) IncrJoins()       { m.joins.Add(1) }
func (m *Monitor) IncrLeaves()      { m.leaves.Add(1) }
func (m *Monitor) IncrStored()      { m.messagesStored.Add(1) }
func (m *Monitor) IncrStoreFailed() { m.storeFailures.Add(1) }
func (m *Monitor) IncrDelivered()   { m.broadcastsDelivered.Add(1) }
func (m *Monitor) IncrDropped()     { m.broadcastsDropped.Add(1) }
func (m *Monitor) IncrPurgeFailed() { m.purgesFailed.Add(1) }

// Uptime since the monitor was built, rounded for display.
func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startedAt).Round(time.Second)
}

// GetLatest returns a consistent-enough snapshot for logs and dashboards.
func (m *Monitor) GetLatest() Stats {
	return Stats{
		ConnectionsOpen:     m.connectionsOpen.Load(),
		SessionsCreated:     m.sessionsCreated.Load(),
		Joins:               m.joins.Load(),
		Leaves:              m.leaves.Load(),
		MessagesStored:      m.messagesStored.Load(),
		StoreFailures:       m.storeFailures.Load(),
		BroadcastsDelivered: m.broadcastsDelivered.Load(),
		BroadcastsDropped:   m.broadcastsDropped.Load(),
		PurgesFailed:        m.purgesFailed.Load(),
	}
}
