// Package indexer keeps the Elasticsearch postings index in step with the
// database by re-indexing every posting on a cron schedule.
package indexer

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/metrics"
	"jobmarket-workers/internal/models"
)

const (
	DefaultSchedule  = "@every 15m"
	DefaultBatchSize = 500
	runTimeout       = 10 * time.Minute
)

// Source pages through all postings in id order.
type Source interface {
	ListAfter(ctx context.Context, afterID string, limit int) ([]models.JobPosting, error)
}

// Sink receives batches of postings.
type Sink interface {
	EnsureIndex(ctx context.Context) error
	BulkIndex(ctx context.Context, postings []models.JobPosting) (int, error)
}

// RunStats summarizes one re-index pass.
type RunStats struct {
	Indexed  int
	Failed   int
	Batches  int
	Duration time.Duration
}

type Indexer struct {
	source    Source
	sink      Sink
	batchSize int
	logger    logger.Logger

	cron    *cron.Cron
	running sync.Mutex
}

func New(source Source, sink Sink, batchSize int, log logger.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Indexer{
		source:    source,
		sink:      sink,
		batchSize: batchSize,
		logger:    log.WithFields(map[string]interface{}{"component": "indexer"}),
	}
}

// Run re-indexes every posting once. Overlapping runs are skipped.
func (i *Indexer) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats
	if !i.running.TryLock() {
		i.logger.Warn("re-index already running, skipping", nil)
		return stats, nil
	}
	defer i.running.Unlock()

	start := time.Now()
	if err := i.sink.EnsureIndex(ctx); err != nil {
		return stats, err
	}

	after := ""
	for {
		batch, err := i.source.ListAfter(ctx, after, i.batchSize)
		if err != nil {
			return stats, err
		}
		if len(batch) == 0 {
			break
		}

		failed, err := i.sink.BulkIndex(ctx, batch)
		if err != nil {
			metrics.PostingsIndexed.WithLabelValues("failure").Add(float64(len(batch)))
			return stats, err
		}

		stats.Batches++
		stats.Failed += failed
		stats.Indexed += len(batch) - failed
		metrics.PostingsIndexed.WithLabelValues("success").Add(float64(len(batch) - failed))
		metrics.PostingsIndexed.WithLabelValues("failure").Add(float64(failed))

		after = batch[len(batch)-1].ID
		if len(batch) < i.batchSize {
			break
		}
	}

	stats.Duration = time.Since(start)
	i.logger.Info("re-index finished", map[string]interface{}{
		"indexed":  stats.Indexed,
		"failed":   stats.Failed,
		"batches":  stats.Batches,
		"duration": stats.Duration.String(),
	})
	return stats, nil
}

// Start schedules Run. An empty schedule uses DefaultSchedule.
func (i *Indexer) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := i.Run(ctx); err != nil {
			i.logger.Error("scheduled re-index failed", map[string]interface{}{"error": err})
		}
	}); err != nil {
		return err
	}

	i.cron = c
	c.Start()
	i.logger.Info("re-index scheduled", map[string]interface{}{"schedule": schedule})
	return nil
}

// Stop halts the schedule and waits for a running pass to finish or ctx to end.
func (i *Indexer) Stop(ctx context.Context) {
	if i.cron == nil {
		return
	}
	select {
	case <-i.cron.Stop().Done():
	case <-ctx.Done():
	}
}
