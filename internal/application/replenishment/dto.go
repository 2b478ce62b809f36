package replenishment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockwise/backend/internal/domain/replenishment"
)

// RecommendationResponse is the reorder advice for one stocked item
type RecommendationResponse struct {
	ItemID              uuid.UUID `json:"item_id"`
	UnitsPerCase        int       `json:"units_per_case"`
	MinimumStock        int       `json:"minimum_stock"`
	DaysOfSupply        int       `json:"days_of_supply"`
	CurrentQuantity     float64   `json:"current_quantity"`
	AvgDailySales       float64   `json:"avg_daily_sales"`
	SuggestedOrderUnits int       `json:"suggested_order_units"`
	LowStock            bool      `json:"low_stock"`
	RuleSource          string    `json:"rule_source"`
	RuleCategory        string    `json:"rule_category,omitempty"`
}

// VariationNode is a stocked variation under its product
type VariationNode struct {
	ID             uuid.UUID              `json:"id"`
	ExternalID     string                 `json:"external_id"`
	Name           string                 `json:"name"`
	SKU            string                 `json:"sku,omitempty"`
	Price          decimal.Decimal        `json:"price"`
	Recommendation RecommendationResponse `json:"recommendation"`
}

// ProductNode is a product stocked at a location. Recommendation is set when
// the product has a product-level stock record.
type ProductNode struct {
	ID             uuid.UUID               `json:"id"`
	ExternalID     string                  `json:"external_id,omitempty"`
	Name           string                  `json:"name"`
	Category       string                  `json:"category,omitempty"`
	Recommendation *RecommendationResponse `json:"recommendation,omitempty"`
	Variations     []VariationNode         `json:"variations"`
}

// LocationNode groups the products stocked at one location
type LocationNode struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Products []ProductNode `json:"products"`
}

// RecommendationTree is the full read-side response
type RecommendationTree struct {
	GeneratedAt  time.Time      `json:"generated_at"`
	WindowDays   int            `json:"window_days"`
	LeadTimeDays int            `json:"lead_time_days"`
	Locations    []LocationNode `json:"locations"`
}

func toRecommendationResponse(itemID uuid.UUID, rule replenishment.Rule, rec replenishment.Recommendation) RecommendationResponse {
	return RecommendationResponse{
		ItemID:              itemID,
		UnitsPerCase:        rec.UnitsPerCase,
		MinimumStock:        rec.MinimumStock,
		DaysOfSupply:        rec.DaysOfSupply,
		CurrentQuantity:     rec.CurrentQuantity,
		AvgDailySales:       rec.AvgDailySales,
		SuggestedOrderUnits: rec.SuggestedOrderUnits,
		LowStock:            rec.LowStock,
		RuleSource:          string(rec.Source),
		RuleCategory:        rule.Category,
	}
}
