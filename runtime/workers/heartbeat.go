package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"github.com/Alex-SA1/Efficient-Study-Platform/observability"
)

// HeartbeatWorker periodically reports process health and chat counters
// through the structured log, so a plain log tail is enough to see whether
// broadcasts are flowing and connections are leaking.
type HeartbeatWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitor *observability.Monitor,
	interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitor: monitor, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu := selfStats(p)
			stats := w.monitor.GetLatest()
			w.log.Info("Heartbeat",
				"uptime", w.monitor.Uptime().String(),
				"ram_mb", rss/1024/1024,
				"cpu_percent", cpu,
				"connections_open", stats.ConnectionsOpen,
				"sessions_created", stats.SessionsCreated,
				"messages_stored", stats.MessagesStored,
				"broadcasts_delivered", stats.BroadcastsDelivered,
				"broadcasts_dropped", stats.BroadcastsDropped,
				"purges_failed", stats.PurgesFailed,
			)
		}
	}
}

func selfStats(p *process.Process) (rss uint64, cpu float64) {
	if mem, err := p.MemoryInfo(); err == nil {
		rss = mem.RSS
	}
	cpu, _ = p.CPUPercent()
	return rss, cpu
}
