package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/domain/shared"
	"github.com/stockwise/backend/internal/infrastructure/fetch"
)

// maxResponseSize is the maximum allowed response size from the Square API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxOrderSearchLocations is the number of location IDs Square accepts per order search
const maxOrderSearchLocations = 10

// SquareAdapter implements integration.CommercePlatform against the Square v2 API
type SquareAdapter struct {
	config *SquareConfig
	client *fetch.Client
	logger *zap.Logger
}

var _ integration.CommercePlatform = (*SquareAdapter)(nil)

// NewSquareAdapter creates a new Square adapter with the given configuration
func NewSquareAdapter(config *SquareConfig, logger *zap.Logger) (*SquareAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("square")

	client := fetch.NewClient(config.Retry,
		fetch.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
		fetch.WithLogger(logger),
	)
	return &SquareAdapter{config: config, client: client, logger: logger}, nil
}

// ---------------------------------------------------------------------------
// Locations
// ---------------------------------------------------------------------------

// ListLocations returns all active locations
func (a *SquareAdapter) ListLocations(ctx context.Context) ([]integration.RemoteLocation, error) {
	var resp squareLocationsResponse
	if err := a.doRequest(ctx, http.MethodGet, "/v2/locations", nil, &resp); err != nil {
		return nil, err
	}

	locations := make([]integration.RemoteLocation, 0, len(resp.Locations))
	for _, l := range resp.Locations {
		if l.Status != "" && l.Status != "ACTIVE" {
			continue
		}
		locations = append(locations, integration.RemoteLocation{ID: l.ID, Name: l.Name})
	}
	valid, rejected := integration.FilterValid(locations)
	a.logRejected("location", rejected)
	return valid, nil
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// ListCatalog returns every item, variation and category
func (a *SquareAdapter) ListCatalog(ctx context.Context) (*integration.RemoteCatalog, error) {
	objects, err := fetch.AllCursor(ctx, func(ctx context.Context, cursor string) ([]squareCatalogObject, string, error) {
		q := url.Values{}
		q.Set("types", "ITEM,ITEM_VARIATION,CATEGORY")
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var resp squareCatalogListResponse
		if err := a.doRequest(ctx, http.MethodGet, "/v2/catalog/list?"+q.Encode(), nil, &resp); err != nil {
			return nil, "", err
		}
		return resp.Objects, resp.Cursor, nil
	})
	if err != nil {
		return nil, err
	}

	catalog := &integration.RemoteCatalog{}
	seenVariations := make(map[string]struct{})
	addVariation := func(obj squareCatalogObject, itemID string) {
		if obj.ItemVariationData == nil {
			return
		}
		if _, ok := seenVariations[obj.ID]; ok {
			return
		}
		seenVariations[obj.ID] = struct{}{}
		if obj.ItemVariationData.ItemID != "" {
			itemID = obj.ItemVariationData.ItemID
		}
		v := integration.RemoteVariation{
			ID:        obj.ID,
			ItemID:    itemID,
			Name:      obj.ItemVariationData.Name,
			SKU:       obj.ItemVariationData.SKU,
			IsDeleted: obj.IsDeleted,
		}
		if obj.ItemVariationData.PriceMoney != nil && obj.ItemVariationData.PriceMoney.Amount > 0 {
			v.PriceCents = obj.ItemVariationData.PriceMoney.Amount
		}
		catalog.Variations = append(catalog.Variations, v)
	}

	for _, obj := range objects {
		switch obj.Type {
		case "ITEM":
			if obj.ItemData == nil {
				continue
			}
			catalog.Items = append(catalog.Items, integration.RemoteItem{
				ID:         obj.ID,
				Name:       obj.ItemData.Name,
				CategoryID: itemCategoryID(obj.ItemData),
				IsDeleted:  obj.IsDeleted,
				UpdatedAt:  parseTime(obj.UpdatedAt),
			})
			for _, v := range obj.ItemData.Variations {
				addVariation(v, obj.ID)
			}
		case "ITEM_VARIATION":
			addVariation(obj, "")
		case "CATEGORY":
			if obj.CategoryData == nil {
				continue
			}
			catalog.Categories = append(catalog.Categories, integration.RemoteCategory{
				ID:   obj.ID,
				Name: obj.CategoryData.Name,
			})
		}
	}

	var rejected int
	catalog.Items, rejected = integration.FilterValid(catalog.Items)
	a.logRejected("item", rejected)
	catalog.Variations, rejected = integration.FilterValid(catalog.Variations)
	a.logRejected("variation", rejected)
	catalog.Categories, rejected = integration.FilterValid(catalog.Categories)
	a.logRejected("category", rejected)

	return catalog, nil
}

// itemCategoryID prefers the legacy single category and falls back to the
// first entry of the categories list
func itemCategoryID(item *squareItemData) string {
	if item.CategoryID != "" {
		return item.CategoryID
	}
	if len(item.Categories) > 0 {
		return item.Categories[0].ID
	}
	return ""
}

// ---------------------------------------------------------------------------
// Inventory
// ---------------------------------------------------------------------------

// RetrieveInventoryCounts returns current counts for the given locations
func (a *SquareAdapter) RetrieveInventoryCounts(ctx context.Context, locationIDs []string) ([]integration.RemoteInventoryCount, error) {
	raw, err := fetch.AllCursor(ctx, func(ctx context.Context, cursor string) ([]squareInventoryCount, string, error) {
		body := squareInventoryBatchRequest{
			LocationIDs: locationIDs,
			Cursor:      cursor,
			Limit:       a.config.PageLimit,
		}
		var resp squareInventoryBatchResponse
		if err := a.doRequest(ctx, http.MethodPost, "/v2/inventory/counts/batch-retrieve", body, &resp); err != nil {
			return nil, "", err
		}
		return resp.Counts, resp.Cursor, nil
	})
	if err != nil {
		return nil, err
	}

	counts := make([]integration.RemoteInventoryCount, 0, len(raw))
	for _, c := range raw {
		counts = append(counts, integration.RemoteInventoryCount{
			CatalogObjectID: c.CatalogObjectID,
			LocationID:      c.LocationID,
			State:           c.State,
			Quantity:        clampNonNegative(shared.ParseQuantity(c.Quantity)),
			CalculatedAt:    parseTime(c.CalculatedAt),
		})
	}
	valid, rejected := integration.FilterValid(counts)
	a.logRejected("inventory count", rejected)
	return valid, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// SearchCompletedOrders returns orders closed in [from, to) at the given locations
func (a *SquareAdapter) SearchCompletedOrders(ctx context.Context, locationIDs []string, from, to time.Time) ([]integration.RemoteOrder, error) {
	var orders []integration.RemoteOrder

	for start := 0; start < len(locationIDs); start += maxOrderSearchLocations {
		end := min(start+maxOrderSearchLocations, len(locationIDs))
		batch := locationIDs[start:end]

		raw, err := fetch.AllCursor(ctx, func(ctx context.Context, cursor string) ([]squareOrder, string, error) {
			body := squareOrderSearchRequest{
				LocationIDs: batch,
				Cursor:      cursor,
				Limit:       a.config.PageLimit,
				Query: squareOrderQuery{
					Filter: squareOrderFilter{
						StateFilter: squareStateFilter{States: []string{"COMPLETED"}},
						DateTimeFilter: squareDateTimeFilter{ClosedAt: squareTimeRange{
							StartAt: from.UTC().Format(time.RFC3339),
							EndAt:   to.UTC().Format(time.RFC3339),
						}},
					},
					Sort: squareOrderSort{SortField: "CLOSED_AT", SortOrder: "ASC"},
				},
			}
			var resp squareOrderSearchResponse
			if err := a.doRequest(ctx, http.MethodPost, "/v2/orders/search", body, &resp); err != nil {
				return nil, "", err
			}
			return resp.Orders, resp.Cursor, nil
		})
		if err != nil {
			return nil, err
		}

		for _, o := range raw {
			order := integration.RemoteOrder{
				ID:         o.ID,
				LocationID: o.LocationID,
				ClosedAt:   parseTime(o.ClosedAt),
			}
			for _, li := range o.LineItems {
				order.LineItems = append(order.LineItems, integration.RemoteLineItem{
					CatalogObjectID: li.CatalogObjectID,
					Name:            li.Name,
					Quantity:        shared.ParseQuantity(li.Quantity),
				})
			}
			orders = append(orders, order)
		}
	}

	valid, rejected := integration.FilterValid(orders)
	a.logRejected("order", rejected)
	return valid, nil
}

// ---------------------------------------------------------------------------
// HTTP
// ---------------------------------------------------------------------------

// doRequest sends a JSON request through the retrying client and decodes the
// response into out
func (a *SquareAdapter) doRequest(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := a.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)
		req.Header.Set("Square-Version", a.config.APIVersion)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", integration.ErrPlatformRateLimited, err)
		}
		return fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", integration.ErrPlatformUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformAuthFailed, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: HTTP %d %s %s: %s", integration.ErrPlatformRequestFailed,
			resp.StatusCode, method, path, summarizeErrors(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", integration.ErrPlatformRequestFailed, path, err)
	}
	return nil
}

func (a *SquareAdapter) logRejected(kind string, n int) {
	if n > 0 {
		a.logger.Warn("Dropped invalid remote records",
			zap.String("kind", kind),
			zap.Int("count", n),
		)
	}
}

func summarizeErrors(body []byte) string {
	var envelope struct {
		Errors []squareError `json:"errors"`
	}
	if json.Unmarshal(body, &envelope) != nil || len(envelope.Errors) == 0 {
		return strings.TrimSpace(string(body))
	}
	parts := make([]string, 0, len(envelope.Errors))
	for _, e := range envelope.Errors {
		parts = append(parts, e.Code+": "+e.Detail)
	}
	return strings.Join(parts, "; ")
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func clampNonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
