// Package watcher is the change detector and notifier: a long-lived loop
// that scans every tracked wallet on a fixed interval, compares against
// the stored balance, persists detected changes, and notifies owners.
package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nightwatcher/internal/config"
	"nightwatcher/internal/notify"
	"nightwatcher/internal/oracle"
	"nightwatcher/internal/store"
)

// Watcher owns the balance poll loop. It holds no private copy of wallet
// state between cycles: every cycle re-reads the store so registrations
// landing mid-cycle are picked up next time.
type Watcher struct {
	store    *store.Store
	oracle   oracle.Oracle
	sink     notify.Sink
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.Mutex
	last    CycleStats
	cycles  int64
}

// NewWatcher creates a Watcher over the given store, oracle, and sink.
func NewWatcher(st *store.Store, o oracle.Oracle, sink notify.Sink) *Watcher {
	w := &Watcher{
		store:    st,
		oracle:   o,
		sink:     sink,
		interval: config.PollInterval,
	}

	slog.Info("watcher initialized",
		"oracle", o.Name(),
		"sink", sink.Name(),
		"pollInterval", w.interval,
	)
	return w
}

// Start launches the poll loop goroutine. The loop runs one cycle per
// tick until Stop is called.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(ctx)

	slog.Info("watcher started", "pollInterval", w.interval)
}

// Stop cancels the poll loop and waits for the goroutine to finish, with
// a bounded timeout.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	slog.Info("watcher stopping")
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("watcher stopped cleanly")
	case <-time.After(config.ShutdownTimeout):
		slog.Warn("watcher shutdown timed out, goroutine may still be running",
			"timeout", config.ShutdownTimeout,
		)
	}
}

// run is the poll loop goroutine.
func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// First scan runs immediately; the ticker paces the rest.
	w.runAndRecord(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("watcher loop exiting", "reason", ctx.Err())
			return

		case <-ticker.C:
			w.runAndRecord(ctx)
		}
	}
}

func (w *Watcher) runAndRecord(ctx context.Context) {
	stats := w.RunCycle(ctx)

	w.statsMu.Lock()
	w.last = stats
	w.cycles++
	cycle := w.cycles
	w.statsMu.Unlock()

	slog.Debug("poll cycle finished",
		"cycle", cycle,
		"scanned", stats.Scanned,
		"changed", stats.Changed,
		"unavailable", stats.Unavailable,
		"notifyFailures", stats.NotifyFailures,
		"storeFailures", stats.StoreFailures,
	)
}

// LastStats returns the most recent cycle's stats and the number of
// completed cycles.
func (w *Watcher) LastStats() (CycleStats, int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return w.last, w.cycles
}
