package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/metrics"
)

// StatsSource computes the current aggregate counts.
type StatsSource interface {
	Stats(ctx context.Context) (domain.Stats, error)
}

// Broadcaster recomputes the statistics and pushes them to every client.
type Broadcaster struct {
	stats   StatsSource
	hub     *Hub
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewBroadcaster creates a Broadcaster. Each recomputation is bounded by
// timeout.
func NewBroadcaster(stats StatsSource, hub *Hub, timeout time.Duration) *Broadcaster {
	return &Broadcaster{stats: stats, hub: hub, timeout: timeout}
}

// Notify schedules a recomputation and returns immediately. Failures are
// logged and never reach the caller.
func (b *Broadcaster) Notify() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		stats, err := b.stats.Stats(ctx)
		metrics.RecordStatsBroadcast(err)
		if err != nil {
			slog.Warn("could not compute realtime stats", "error", err)
			return
		}
		b.hub.Broadcast(Message{Type: MessageTypeStats, Data: stats})
	}()
}

// Wait blocks until every scheduled recomputation has finished.
func (b *Broadcaster) Wait() {
	b.wg.Wait()
}
