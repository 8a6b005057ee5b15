package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/observability"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
)

// PurgeWorker deletes the chat history of torn-down sessions out-of-band.
// A purge failure is retried a bounded number of times and then alerted;
// it never blocks the departing user's response and never blocks code reuse.
type PurgeWorker struct {
	jobs       chan domain.GroupID
	messages   repositories.IMessageRepository
	monitor    *observability.Monitor
	maxRetries int
	retryDelay time.Duration
	log        *slog.Logger
}

func NewPurgeWorker(jobs chan domain.GroupID, messages repositories.IMessageRepository,
	monitor *observability.Monitor, maxRetries int, retryDelay time.Duration,
	log *slog.Logger) *PurgeWorker {
	return &PurgeWorker{
		jobs:       jobs,
		messages:   messages,
		monitor:    monitor,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		log:        log,
	}
}

func (w *PurgeWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case group, ok := <-w.jobs:
			if !ok {
				return nil
			}
			w.purge(ctx, group)
		}
	}
}

func (w *PurgeWorker) purge(ctx context.Context, group domain.GroupID) {
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		err := w.messages.PurgeGroup(group)
		if err == nil {
			w.log.Debug("Session history purged", "group", string(group), "attempt", attempt)
			return
		}
		w.log.Warn("Purge attempt failed", "group", string(group), "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryDelay):
		}
	}
	w.monitor.IncrPurgeFailed()
	w.log.Error("Giving up purging session history, manual cleanup required",
		"group", string(group), "attempts", w.maxRetries)
}
