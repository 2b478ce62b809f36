package catalog

import (
	"strings"
	"time"
)

// Location is a store location. Its ID is the remote platform's location ID,
// which is stable across resyncs.
type Location struct {
	ID       string
	Name     string
	SyncedAt time.Time
}

// NewLocation creates a location from a remote ID and display name
func NewLocation(id, name string) (*Location, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrLocationIDRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = id
	}
	return &Location{ID: id, Name: name}, nil
}
