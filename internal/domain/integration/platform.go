package integration

import (
	"context"
	"time"
)

// CommercePlatform is the port to the remote point-of-sale platform
type CommercePlatform interface {
	// ListLocations returns all active locations
	ListLocations(ctx context.Context) ([]RemoteLocation, error)
	// ListCatalog returns every item, variation and category
	ListCatalog(ctx context.Context) (*RemoteCatalog, error)
	// RetrieveInventoryCounts returns current counts for the given locations
	RetrieveInventoryCounts(ctx context.Context, locationIDs []string) ([]RemoteInventoryCount, error)
	// SearchCompletedOrders returns orders closed in [from, to) at the given locations
	SearchCompletedOrders(ctx context.Context, locationIDs []string, from, to time.Time) ([]RemoteOrder, error)
}
