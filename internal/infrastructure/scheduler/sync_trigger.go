package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/domain/shared"
)

// Job is the work a trigger runs on every tick
type Job func(ctx context.Context) error

// SyncTriggerConfig holds configuration for the periodic sync trigger
type SyncTriggerConfig struct {
	// Interval between runs; zero disables the trigger
	Interval time.Duration
	// JobTimeout bounds a single run
	JobTimeout time.Duration
	// RunOnStart runs the job once immediately after Start
	RunOnStart bool
}

// DefaultSyncTriggerConfig returns default trigger configuration
func DefaultSyncTriggerConfig() SyncTriggerConfig {
	return SyncTriggerConfig{
		Interval:   time.Hour,
		JobTimeout: 30 * time.Minute,
	}
}

// SyncTrigger runs a resync job on a fixed interval. A tick that finds a
// resync already in flight is skipped, not queued.
type SyncTrigger struct {
	config SyncTriggerConfig
	job    Job
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
	lastErr   error
}

// NewSyncTrigger creates a new sync trigger
func NewSyncTrigger(config SyncTriggerConfig, job Job, logger *zap.Logger) *SyncTrigger {
	return &SyncTrigger{
		config: config,
		job:    job,
		logger: logger.Named("sync_trigger"),
	}
}

// Start starts the trigger loop
func (t *SyncTrigger) Start(ctx context.Context) error {
	if t.config.Interval <= 0 {
		return ErrInvalidInterval
	}

	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Sync trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Duration("job_timeout", t.config.JobTimeout),
	)
	return nil
}

// Stop stops the trigger and waits for an in-flight run, bounded by ctx
func (t *SyncTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Sync trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastRun returns when the job last finished and its error
func (t *SyncTrigger) LastRun() (time.Time, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRun, t.lastErr
}

func (t *SyncTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.runOnce(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *SyncTrigger) runOnce(ctx context.Context) {
	if t.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.JobTimeout)
		defer cancel()
	}

	err := t.job(ctx)
	switch {
	case errors.Is(err, shared.ErrSyncInProgress):
		t.logger.Info("Skipping scheduled sync, another sync is running")
		return
	case err != nil:
		t.logger.Error("Scheduled sync failed", zap.Error(err))
	default:
		t.logger.Debug("Scheduled sync finished")
	}

	t.mu.Lock()
	t.lastRun = time.Now()
	t.lastErr = err
	t.mu.Unlock()
}
