package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/dealthread-monitor/internal/pkg/distlock"
	"github.com/ignite/dealthread-monitor/internal/pkg/logger"
)

// WorkerConfig tunes the polling worker.
type WorkerConfig struct {
	Interval      time.Duration
	MaxConcurrent int
	// Stages limits discovery to these pipeline stages; empty means all.
	Stages []string
	// DealIDs is an explicit watchlist; when set, discovery is skipped.
	DealIDs []string
	// Retention bounds how long snapshots are kept. Zero disables pruning.
	Retention time.Duration
}

// Worker periodically evaluates every watched deal. An optional distributed
// lock keeps multiple instances from scoring the same cycle twice.
type Worker struct {
	svc  *Service
	cfg  WorkerConfig
	lock distlock.DistLock
	log  *logger.Logger
}

// NewWorker creates a polling worker. lock may be nil for single-instance
// deployments.
func NewWorker(svc *Service, cfg WorkerConfig, lock distlock.DistLock) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Worker{svc: svc, cfg: cfg, lock: lock, log: logger.Component("worker")}
}

// Run executes evaluation cycles until the context is canceled. The first
// cycle starts immediately.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("worker started", "interval", w.cfg.Interval.String())

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	if w.lock != nil {
		acquired, err := w.lock.Acquire(ctx)
		if err != nil {
			w.log.Warn("cycle lock error", "error", err.Error())
			return
		}
		if !acquired {
			w.log.Debug("cycle held by another instance")
			return
		}
		w.log.Info("cycle lock acquired", "holder", w.lock.Holder())
		defer func() {
			if err := w.lock.Release(ctx); err != nil {
				w.log.Warn("cycle lock release failed", "error", err.Error())
			}
		}()
	}

	dealIDs, err := w.watchedDeals(ctx)
	if err != nil {
		w.log.Error("deal discovery failed", "error", err.Error())
		return
	}
	w.log.Info("cycle started", "deals", len(dealIDs))

	sem := make(chan struct{}, w.cfg.MaxConcurrent)
	var wg sync.WaitGroup
	for _, id := range dealIDs {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(dealID string) {
			defer func() { <-sem; wg.Done() }()
			if _, err := w.svc.EvaluateDeal(ctx, dealID); err != nil {
				w.log.Error("evaluation failed", "deal_id", dealID, "error", err.Error())
			}
		}(id)
	}
	wg.Wait()

	w.pruneSnapshots(ctx)
	w.log.Info("cycle finished", "deals", len(dealIDs))
}

func (w *Worker) watchedDeals(ctx context.Context) ([]string, error) {
	if len(w.cfg.DealIDs) > 0 {
		return w.cfg.DealIDs, nil
	}
	deals, err := w.svc.source.ListDeals(ctx, w.cfg.Stages)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(deals))
	for _, d := range deals {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (w *Worker) pruneSnapshots(ctx context.Context) {
	if w.cfg.Retention <= 0 || w.svc.store == nil {
		return
	}
	n, err := w.svc.store.PruneBefore(ctx, time.Now().Add(-w.cfg.Retention))
	if err != nil {
		w.log.Warn("snapshot prune failed", "error", err.Error())
		return
	}
	if n > 0 {
		w.log.Info("snapshots pruned", "count", n)
	}
}
