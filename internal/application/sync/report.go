package syncapp

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/stockwise/backend/internal/domain/integration"
)

// SyncStatus is the outcome of a resync run
type SyncStatus string

const (
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusFailed    SyncStatus = "failed"
)

// Step names, also used as SyncReport.Counts keys
const (
	StepLocations  = "locations"
	StepProducts   = "products"
	StepVariations = "variations"
	StepInventory  = "inventory"
	StepSales      = "sales"
)

// SyncReport summarizes one resync run
type SyncReport struct {
	ID         uuid.UUID            `json:"id"`
	Type       integration.SyncType `json:"type"`
	Status     SyncStatus           `json:"status"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Counts     map[string]int       `json:"counts"`
	Error      string               `json:"error,omitempty"`
}

func newSyncReport(t integration.SyncType, startedAt time.Time) *SyncReport {
	return &SyncReport{
		ID:        uuid.New(),
		Type:      t,
		StartedAt: startedAt,
		Counts:    make(map[string]int),
	}
}

// Duration returns how long the run took
func (r *SyncReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run finished without error
func (r *SyncReport) Succeeded() bool {
	return r.Status == SyncStatusSucceeded
}

func (r *SyncReport) clone() *SyncReport {
	c := *r
	c.Counts = maps.Clone(r.Counts)
	return &c
}
