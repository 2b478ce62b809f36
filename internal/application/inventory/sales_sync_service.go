package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/domain/inventory"
	"github.com/stockwise/backend/internal/domain/shared"
)

// SalesSyncService replaces the stored sales window with events built from
// completed orders
type SalesSyncService struct {
	resolver catalogResolver
	repo     inventory.SalesRepository
	logger   *zap.Logger
}

// NewSalesSyncService creates a new SalesSyncService
func NewSalesSyncService(
	products ProductResolver,
	variations catalog.VariationRepository,
	repo inventory.SalesRepository,
	logger *zap.Logger,
) *SalesSyncService {
	return &SalesSyncService{
		resolver: catalogResolver{products: products, variations: variations, chunkSize: DefaultLookupChunkSize},
		repo:     repo,
		logger:   logger.Named("sales_sync"),
	}
}

// SyncOrders turns order line items closed in [from, to) into sale events and
// replaces the stored events of that window. Line items without a catalog
// object or with a non-positive quantity are skipped. Returns the number of
// events written.
func (s *SalesSyncService) SyncOrders(ctx context.Context, orders []integration.RemoteOrder, from, to time.Time) (int, error) {
	if !to.After(from) {
		return 0, fmt.Errorf("sales window [%s, %s) is empty", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	valid, rejected := integration.FilterValid(orders)
	if rejected > 0 {
		s.logger.Warn("Skipping invalid orders", zap.Int("rejected", rejected))
	}

	var ids []string
	outside := 0
	windowed := valid[:0]
	for _, o := range valid {
		if o.ClosedAt.Before(from) || !o.ClosedAt.Before(to) {
			outside++
			continue
		}
		windowed = append(windowed, o)
		for _, li := range o.LineItems {
			if id := strings.TrimSpace(li.CatalogObjectID); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if outside > 0 {
		s.logger.Debug("Dropped orders closed outside the sales window", zap.Int("orders", outside))
	}

	refs, err := s.resolver.resolve(ctx, ids)
	if err != nil {
		return 0, err
	}

	var events []inventory.SaleEvent
	unresolved := 0
	for _, o := range windowed {
		for _, li := range o.LineItems {
			qty := shared.SanitizeNumber(li.Quantity)
			if qty <= 0 {
				continue
			}
			ref, ok := refs[strings.TrimSpace(li.CatalogObjectID)]
			if !ok {
				unresolved++
				continue
			}
			events = append(events, inventory.SaleEvent{
				LocationID:  o.LocationID,
				ProductID:   ref.productID,
				VariationID: ref.variationID,
				Quantity:    qty,
				SaleDate:    o.ClosedAt.UTC(),
			})
		}
	}
	if unresolved > 0 {
		s.logger.Warn("Skipped line items without a resolvable catalog object", zap.Int("line_items", unresolved))
	}

	if err := s.repo.ReplaceWindow(ctx, from, to, events); err != nil {
		return 0, fmt.Errorf("replace sales window: %w", err)
	}

	s.logger.Info("Sales synced",
		zap.Int("orders", len(windowed)),
		zap.Int("events", len(events)),
		zap.Time("from", from),
		zap.Time("to", to),
	)
	return len(events), nil
}
