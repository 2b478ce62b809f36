package replenishment

import (
	"math"

	"github.com/stockwise/backend/internal/domain/shared"
)

// Recommendation is the reorder advice for one item at one location
type Recommendation struct {
	UnitsPerCase        int
	MinimumStock        int
	DaysOfSupply        int
	CurrentQuantity     float64
	AvgDailySales       float64
	SuggestedOrderUnits int
	LowStock            bool
	Source              RuleSource
}

// Recommend applies a rule to the current stock. The shortfall is rounded up
// to whole cases, so a suggestion is either zero or at least one case.
func Recommend(rule Rule, currentQuantity, avgDailySales float64) Recommendation {
	current := shared.SanitizeNumber(currentQuantity)

	shortfall := int(math.Ceil(float64(rule.MinimumStock) - current))
	if shortfall < 0 {
		shortfall = 0
	}

	return Recommendation{
		UnitsPerCase:        rule.UnitsPerCase,
		MinimumStock:        rule.MinimumStock,
		DaysOfSupply:        rule.DaysOfSupply,
		CurrentQuantity:     current,
		AvgDailySales:       shared.SanitizeNumber(avgDailySales),
		SuggestedOrderUnits: RoundUpToCase(shortfall, rule.UnitsPerCase),
		LowStock:            current < float64(rule.MinimumStock),
		Source:              rule.Source,
	}
}

// RoundUpToCase rounds units up to the next multiple of unitsPerCase.
// Case sizes of one or less leave units unchanged.
func RoundUpToCase(units, unitsPerCase int) int {
	if units <= 0 {
		return 0
	}
	if unitsPerCase <= 1 {
		return units
	}
	return ((units + unitsPerCase - 1) / unitsPerCase) * unitsPerCase
}
