package dto

import (
	"time"

	syncapp "github.com/stockwise/backend/internal/application/sync"
)

// SyncRequest holds the query parameters of a sync trigger
type SyncRequest struct {
	Type string `form:"type" binding:"omitempty,max=32"`
}

// SyncStatusResponse reports whether a sync is running and how the last one ended
type SyncStatusResponse struct {
	Running    bool                `json:"running"`
	LastReport *syncapp.SyncReport `json:"last_report,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}
