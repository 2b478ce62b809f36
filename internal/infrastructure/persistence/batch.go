package persistence

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Default batch tuning
const (
	DefaultChunkSize = 100
	DefaultWorkers   = 3
	DefaultDelay     = 50 * time.Millisecond
)

// BatchConfig controls how large writes are split and throttled
type BatchConfig struct {
	ChunkSize int
	Workers   int
	Delay     time.Duration // pause a worker takes after each chunk
}

func (c BatchConfig) withDefaults() BatchConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	return c
}

// ChunkError reports which chunk of a batched write failed. Chunks written
// before the failure stay committed.
type ChunkError struct {
	Table string
	Index int
	Start int
	End   int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("write %s chunk %d [%d:%d]: %v", e.Table, e.Index, e.Start, e.End, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// BatchWriter splits a write of n rows into chunks and runs them on a small
// worker pool. Each worker claims the next unclaimed chunk from a shared index.
type BatchWriter struct {
	config BatchConfig
	logger *zap.Logger
}

// NewBatchWriter creates a BatchWriter. Zero config fields take defaults.
func NewBatchWriter(cfg BatchConfig, logger *zap.Logger) *BatchWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchWriter{config: cfg.withDefaults(), logger: logger}
}

// Config returns the effective batch configuration
func (w *BatchWriter) Config() BatchConfig {
	return w.config
}

// WriteFunc writes rows [start, end) of the batch
type WriteFunc func(ctx context.Context, start, end int) error

// Write runs write over n rows. On the first failing chunk no further chunks
// are claimed and a *ChunkError is returned.
func (w *BatchWriter) Write(ctx context.Context, table string, n int, write WriteFunc) error {
	if n <= 0 {
		return nil
	}

	size := w.config.ChunkSize
	chunks := (n + size - 1) / size
	workers := min(w.config.Workers, chunks)

	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				idx := int(next.Add(1) - 1)
				if idx >= chunks {
					return nil
				}
				start := idx * size
				end := min(start+size, n)
				if err := write(gctx, start, end); err != nil {
					w.logger.Error("Batch chunk failed",
						zap.String("table", table),
						zap.Int("chunk", idx),
						zap.Int("start", start),
						zap.Int("end", end),
						zap.Error(err),
					)
					return &ChunkError{Table: table, Index: idx, Start: start, End: end, Err: err}
				}
				if w.config.Delay > 0 && idx+workers < chunks {
					if err := sleep(gctx, w.config.Delay); err != nil {
						return err
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	w.logger.Debug("Batch write complete",
		zap.String("table", table),
		zap.Int("rows", n),
		zap.Int("chunks", chunks),
	)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
