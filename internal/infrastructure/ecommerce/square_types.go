package ecommerce

// Wire types for the subset of the Square v2 API the adapter uses.

type squareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

type squareLocationsResponse struct {
	Locations []squareLocation `json:"locations"`
	Errors    []squareError    `json:"errors"`
}

type squareLocation struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type squareCatalogListResponse struct {
	Objects []squareCatalogObject `json:"objects"`
	Cursor  string                `json:"cursor"`
	Errors  []squareError         `json:"errors"`
}

type squareCatalogObject struct {
	Type              string                   `json:"type"`
	ID                string                   `json:"id"`
	UpdatedAt         string                   `json:"updated_at"`
	IsDeleted         bool                     `json:"is_deleted"`
	ItemData          *squareItemData          `json:"item_data,omitempty"`
	ItemVariationData *squareItemVariationData `json:"item_variation_data,omitempty"`
	CategoryData      *squareCategoryData      `json:"category_data,omitempty"`
}

type squareItemData struct {
	Name       string                `json:"name"`
	CategoryID string                `json:"category_id"`
	Categories []squareCategoryRef   `json:"categories"`
	Variations []squareCatalogObject `json:"variations"`
}

type squareCategoryRef struct {
	ID string `json:"id"`
}

type squareItemVariationData struct {
	ItemID     string       `json:"item_id"`
	Name       string       `json:"name"`
	SKU        string       `json:"sku"`
	PriceMoney *squareMoney `json:"price_money,omitempty"`
}

type squareMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type squareCategoryData struct {
	Name string `json:"name"`
}

type squareInventoryBatchRequest struct {
	LocationIDs []string `json:"location_ids,omitempty"`
	Cursor      string   `json:"cursor,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

type squareInventoryBatchResponse struct {
	Counts []squareInventoryCount `json:"counts"`
	Cursor string                 `json:"cursor"`
	Errors []squareError          `json:"errors"`
}

type squareInventoryCount struct {
	CatalogObjectID   string `json:"catalog_object_id"`
	CatalogObjectType string `json:"catalog_object_type"`
	State             string `json:"state"`
	LocationID        string `json:"location_id"`
	Quantity          string `json:"quantity"`
	CalculatedAt      string `json:"calculated_at"`
}

type squareOrderSearchRequest struct {
	LocationIDs []string         `json:"location_ids"`
	Cursor      string           `json:"cursor,omitempty"`
	Limit       int              `json:"limit,omitempty"`
	Query       squareOrderQuery `json:"query"`
}

type squareOrderQuery struct {
	Filter squareOrderFilter `json:"filter"`
	Sort   squareOrderSort   `json:"sort"`
}

type squareOrderFilter struct {
	StateFilter    squareStateFilter    `json:"state_filter"`
	DateTimeFilter squareDateTimeFilter `json:"date_time_filter"`
}

type squareStateFilter struct {
	States []string `json:"states"`
}

type squareDateTimeFilter struct {
	ClosedAt squareTimeRange `json:"closed_at"`
}

type squareTimeRange struct {
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
}

type squareOrderSort struct {
	SortField string `json:"sort_field"`
	SortOrder string `json:"sort_order"`
}

type squareOrderSearchResponse struct {
	Orders []squareOrder `json:"orders"`
	Cursor string        `json:"cursor"`
	Errors []squareError `json:"errors"`
}

type squareOrder struct {
	ID         string           `json:"id"`
	LocationID string           `json:"location_id"`
	State      string           `json:"state"`
	ClosedAt   string           `json:"closed_at"`
	LineItems  []squareLineItem `json:"line_items"`
}

type squareLineItem struct {
	CatalogObjectID string `json:"catalog_object_id"`
	Name            string `json:"name"`
	Quantity        string `json:"quantity"`
}
