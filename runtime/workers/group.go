package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alex-SA1/Efficient-Study-Platform/contract"
	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/domain/event"
	"github.com/Alex-SA1/Efficient-Study-Platform/observability"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
)

// GroupWorker is the single serialized broadcast path of one session group.
// Every inbound message is stamped, stored durably, and only then fanned out,
// so broadcast order to any given connection matches persistence order and a
// client re-fetching history after a broadcast always finds the message.
type GroupWorker struct {
	group       domain.GroupID
	commands    chan domain.Command
	registry    contract.IConnRegistry
	messages    repositories.IMessageRepository
	monitor     *observability.Monitor
	sinkTimeout time.Duration
	log         *slog.Logger

	// lastStamp keeps per-group timestamps monotonically non-decreasing
	// even if the wall clock steps backwards between two messages.
	lastStamp time.Time
}

func NewGroupWorker(group domain.GroupID, commands chan domain.Command,
	registry contract.IConnRegistry, messages repositories.IMessageRepository,
	monitor *observability.Monitor, sinkTimeout time.Duration, log *slog.Logger) *GroupWorker {
	return &GroupWorker{
		group:       group,
		commands:    commands,
		registry:    registry,
		messages:    messages,
		monitor:     monitor,
		sinkTimeout: sinkTimeout,
		log:         log,
	}
}

func (w *GroupWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping group worker", "group", string(w.group))
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				// Channel closed by session teardown: done for good.
				return nil
			}
			if post, ok := cmd.(domain.PostMessageCommand); ok {
				w.handle(ctx, post)
			}
		}
	}
}

func (w *GroupWorker) handle(ctx context.Context, post domain.PostMessageCommand) {
	msg := domain.Message{
		ID:        uuid.New(),
		Group:     w.group,
		Author:    post.Author,
		Content:   post.Content,
		CreatedAt: w.stamp(),
	}

	if err := w.messages.Store(msg); err != nil {
		// No durable write, no broadcast.
		w.monitor.IncrStoreFailed()
		w.log.Error("Dropping message, store failed",
			"group", string(w.group), "author", post.Author, "error", err)
		return
	}
	w.monitor.IncrStored()

	evt := event.MessagePosted{
		ID:        msg.ID,
		Group:     msg.Group,
		Author:    msg.Author,
		AvatarURL: post.AvatarURL,
		Content:   msg.Content,
		At:        msg.CreatedAt,
	}

	// Delivery is at-most-once per connection: a full or closing sink is a
	// drop for that connection only, never a stall for the group.
	for _, sink := range w.registry.SinksFor(w.group) {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.monitor.IncrDropped()
			w.log.Debug("Broadcast delivery dropped", "group", string(w.group), "error", err)
		} else {
			w.monitor.IncrDelivered()
		}
		cancel()
	}
}

func (w *GroupWorker) stamp() time.Time {
	now := time.Now().UTC()
	if now.Before(w.lastStamp) {
		now = w.lastStamp
	}
	w.lastStamp = now
	return now
}
