package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/config"
	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	"github.com/anthanhphan/go-file-gateway/internal/api/port"
	"github.com/anthanhphan/go-file-gateway/pkg/resilience"
	"github.com/anthanhphan/gosdk/logger"
)

// Purger physically removes files that were logically deleted longer ago
// than the retention period: the object first, then the row.
type Purger struct {
	registry  port.FileRegistry
	backend   port.StorageBackend
	interval  time.Duration
	retention time.Duration
	workers   int
	batchSize int
	now       func() time.Time
}

func NewPurger(cfg config.PurgeConfig, registry port.FileRegistry, backend port.StorageBackend) *Purger {
	p := &Purger{
		registry:  registry,
		backend:   backend,
		interval:  seconds(cfg.IntervalSeconds),
		retention: seconds(cfg.RetentionSeconds),
		workers:   cfg.Workers,
		batchSize: cfg.BatchSize,
		now:       time.Now,
	}
	if p.interval <= 0 {
		p.interval = 5 * time.Minute
	}
	if p.workers <= 0 {
		p.workers = 1
	}
	if p.batchSize <= 0 {
		p.batchSize = 100
	}
	return p
}

// Run purges on every tick until ctx is done.
func (p *Purger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logger.Infow("Purge loop started", "interval", p.interval.String(), "retention", p.retention.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("Purge loop stopped")
			return
		case <-ticker.C:
			if _, err := p.PurgeOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warnw("Purge run failed", "error", err.Error())
			}
		}
	}
}

// PurgeOnce handles one batch and reports how many records were removed.
// A record whose object could not be deleted stays for the next run.
func (p *Purger) PurgeOnce(ctx context.Context) (int, error) {
	cutoff := p.now().Add(-p.retention)
	due, err := p.registry.ListDeleted(ctx, cutoff, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	pool := resilience.NewWorkerPool(p.workers, len(due))
	var purged atomic.Int64
	for _, rec := range due {
		if err := pool.Submit(ctx, func() {
			if p.purge(ctx, rec) {
				purged.Add(1)
			}
		}); err != nil {
			break
		}
	}
	pool.Close()
	pool.Wait()

	n := int(purged.Load())
	logger.Infow("Purge run finished", "due", len(due), "purged", n)
	return n, ctx.Err()
}

func (p *Purger) purge(ctx context.Context, rec domain.FileRecord) bool {
	if err := p.backend.Delete(ctx, rec.StorageKey); err != nil {
		logger.Warnw("Purge object delete failed", "file_id", rec.ID, "storage_key", rec.StorageKey, "error", err.Error())
		return false
	}
	if err := p.registry.Purge(ctx, rec.ID); err != nil {
		logger.Warnw("Purge record delete failed", "file_id", rec.ID, "error", err.Error())
		return false
	}
	return true
}
