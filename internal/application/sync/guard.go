package syncapp

import (
	"sync/atomic"

	"github.com/stockwise/backend/internal/domain/shared"
)

// ErrSyncInProgress is returned when a resync is triggered while another runs
var ErrSyncInProgress = shared.ErrSyncInProgress

// Guard is a process-wide single slot for resyncs. A second caller is
// rejected immediately instead of queued.
type Guard struct {
	running atomic.Bool
}

// NewGuard creates a new Guard
func NewGuard() *Guard {
	return &Guard{}
}

// TryAcquire claims the slot, returning false if it is taken
func (g *Guard) TryAcquire() bool {
	return g.running.CompareAndSwap(false, true)
}

// Release frees the slot
func (g *Guard) Release() {
	g.running.Store(false)
}

// Running reports whether the slot is taken
func (g *Guard) Running() bool {
	return g.running.Load()
}

// Do runs fn while holding the slot. The slot is released on every exit
// path, including panics.
func (g *Guard) Do(fn func() error) error {
	if !g.TryAcquire() {
		return ErrSyncInProgress
	}
	defer g.Release()
	return fn()
}
