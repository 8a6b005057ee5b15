package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Alex-SA1/Efficient-Study-Platform/contract"
	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/errors"
	"github.com/Alex-SA1/Efficient-Study-Platform/observability"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
	"github.com/Alex-SA1/Efficient-Study-Platform/runtime/workers"
)

// Hub is the connection manager: it binds live connections to session
// groups, owns one supervised GroupWorker (and command channel) per active
// group, and hands teardown purges to the out-of-band purge worker.
type Hub struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   contract.IConnRegistry
	messages   repositories.IMessageRepository
	monitor    *observability.Monitor

	bufferSize  int
	sinkTimeout time.Duration

	groups    map[domain.GroupID]chan domain.Command
	purgeJobs chan domain.GroupID

	// workerCtx is the lifetime of all group workers, captured at Start.
	workerCtx context.Context
}

func NewHub(log *slog.Logger, supervisor contract.ISupervisor, registry contract.IConnRegistry,
	messages repositories.IMessageRepository, monitor *observability.Monitor,
	bufferSize int, sinkTimeout time.Duration) *Hub {
	return &Hub{
		log:         log,
		supervisor:  supervisor,
		registry:    registry,
		messages:    messages,
		monitor:     monitor,
		bufferSize:  bufferSize,
		sinkTimeout: sinkTimeout,
		groups:      make(map[domain.GroupID]chan domain.Command),
		purgeJobs:   make(chan domain.GroupID, 64),
	}
}

// Start captures the worker lifetime context. Group workers spawned later by
// Bind/Dispatch inherit it, so one cancellation stops the whole fan-out layer.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.workerCtx = ctx
}

// PurgeJobs exposes the teardown queue consumed by the purge worker.
func (h *Hub) PurgeJobs() chan domain.GroupID {
	return h.purgeJobs
}

// Bind subscribes a connection's sink to its group and makes sure the
// group's serialized broadcast path is running.
func (h *Hub) Bind(connID string, group domain.GroupID, sink contract.EventSink) {
	h.ensureGroup(group)
	h.registry.Subscribe(connID, group, sink)
	h.monitor.ConnOpened()
}

// Release unbinds a connection unconditionally, also on abnormal disconnect.
func (h *Hub) Release(connID string, group domain.GroupID) {
	h.registry.Unsubscribe(connID, group)
	h.monitor.ConnClosed()
}

// Dispatch queues a message on its group's serialized path. A missing group
// means the session died between the client's send and our receive. The send
// is non-blocking and happens under the same lock as CloseGroup, so it can
// never hit a just-closed channel; a full queue drops the message with a
// warning rather than stalling the connection's read loop.
func (h *Hub) Dispatch(cmd domain.PostMessageCommand) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	commands, ok := h.groups[cmd.Group]
	if !ok {
		return errors.ErrSessionNotFound
	}

	select {
	case commands <- cmd:
	default:
		h.log.Warn("Group command queue full, dropping message",
			"group", string(cmd.Group), "author", cmd.Author)
	}
	return nil
}

// CloseGroup shuts the group's broadcast path and queues the history purge.
// Closing the command channel lets the worker finish cleanly (no restart).
// Safe to call for a group that was never started or is already closed.
func (h *Hub) CloseGroup(group domain.GroupID) {
	h.mu.Lock()
	commands, ok := h.groups[group]
	if ok {
		delete(h.groups, group)
		close(commands)
	}
	h.mu.Unlock()

	select {
	case h.purgeJobs <- group:
	default:
		h.log.Error("Purge queue full, history not scheduled for deletion", "group", string(group))
		h.monitor.IncrPurgeFailed()
	}
}

func (h *Hub) ensureGroup(group domain.GroupID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.groups[group]; ok {
		return
	}
	commands := make(chan domain.Command, h.bufferSize)
	h.groups[group] = commands

	worker := workers.NewGroupWorker(group, commands, h.registry, h.messages,
		h.monitor, h.sinkTimeout, h.log)
	h.supervisor.Start(h.workerCtx, worker)
	h.log.Debug("Group broadcast worker started", "group", string(group))
}
