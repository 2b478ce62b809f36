package integration

import "strings"

// SyncType selects which datasets a resync refreshes
type SyncType string

const (
	SyncTypeFull      SyncType = "full"
	SyncTypeProducts  SyncType = "products"
	SyncTypeLocations SyncType = "locations"
	SyncTypeSales     SyncType = "sales"
	SyncTypeInventory SyncType = "inventory"
)

// AllSyncTypes lists the accepted sync types
var AllSyncTypes = []SyncType{
	SyncTypeFull,
	SyncTypeProducts,
	SyncTypeLocations,
	SyncTypeSales,
	SyncTypeInventory,
}

// ParseSyncType parses a sync type argument, case-insensitively
func ParseSyncType(s string) (SyncType, error) {
	t := SyncType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidSyncType
	}
	return t, nil
}

// IsValid returns true if the sync type is known
func (t SyncType) IsValid() bool {
	for _, known := range AllSyncTypes {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the string representation
func (t SyncType) String() string {
	return string(t)
}

// Includes reports whether running t refreshes the dataset named by other
func (t SyncType) Includes(other SyncType) bool {
	return t == SyncTypeFull || t == other
}
