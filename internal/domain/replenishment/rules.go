package replenishment

import (
	"math"
	"strings"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/domain/shared"
)

// RuleSource names the tier that produced a rule
type RuleSource string

const (
	RuleSourceExactName RuleSource = "exact_name"
	RuleSourceKeyword   RuleSource = "keyword"
	RuleSourceCategory  RuleSource = "category"
)

// Rule is the stocking policy for one item
type Rule struct {
	UnitsPerCase int
	MinimumStock int
	DaysOfSupply int
	Source       RuleSource
	// MatchedKey is the override key for exact and keyword rules
	MatchedKey string
	// Category is the fallback category for category rules
	Category string
}

// Override is a fixed stocking policy for a specific product or token
type Override struct {
	Key           string
	UnitsPerCase  int
	MinStockUnits int
	DaysOfSupply  int
}

// overrides is both the exact-name table and the keyword table. Keyword
// matching walks it in order, so brand and product tokens must stay ahead
// of generic pack and bottle size tokens.
var overrides = []Override{
	{Key: "marlboro lights", UnitsPerCase: 10, MinStockUnits: 100, DaysOfSupply: 14},
	{Key: "marlboro red", UnitsPerCase: 10, MinStockUnits: 80, DaysOfSupply: 14},
	{Key: "marlboro", UnitsPerCase: 10, MinStockUnits: 60, DaysOfSupply: 14},
	{Key: "newport", UnitsPerCase: 10, MinStockUnits: 60, DaysOfSupply: 14},
	{Key: "camel", UnitsPerCase: 10, MinStockUnits: 40, DaysOfSupply: 14},
	{Key: "juul", UnitsPerCase: 8, MinStockUnits: 16, DaysOfSupply: 7},
	{Key: "zyn", UnitsPerCase: 5, MinStockUnits: 25, DaysOfSupply: 7},
	{Key: "white claw", UnitsPerCase: 4, MinStockUnits: 8, DaysOfSupply: 7},
	{Key: "high noon", UnitsPerCase: 4, MinStockUnits: 8, DaysOfSupply: 7},
	{Key: "tito's", UnitsPerCase: 12, MinStockUnits: 12, DaysOfSupply: 14},
	{Key: "fireball", UnitsPerCase: 12, MinStockUnits: 12, DaysOfSupply: 14},
	{Key: "30 pack", UnitsPerCase: 1, MinStockUnits: 6, DaysOfSupply: 7},
	{Key: "24 pack", UnitsPerCase: 1, MinStockUnits: 6, DaysOfSupply: 7},
	{Key: "18 pack", UnitsPerCase: 1, MinStockUnits: 6, DaysOfSupply: 7},
	{Key: "12 pack", UnitsPerCase: 2, MinStockUnits: 8, DaysOfSupply: 7},
	{Key: "1.75", UnitsPerCase: 6, MinStockUnits: 6, DaysOfSupply: 14},
	{Key: "750", UnitsPerCase: 12, MinStockUnits: 6, DaysOfSupply: 14},
	{Key: "375", UnitsPerCase: 24, MinStockUnits: 12, DaysOfSupply: 14},
	{Key: "50ml", UnitsPerCase: 10, MinStockUnits: 20, DaysOfSupply: 7},
}

// Overrides returns a copy of the override table in priority order
func Overrides() []Override {
	out := make([]Override, len(overrides))
	copy(out, overrides)
	return out
}

type fallbackProfile struct {
	safetyUnits  float64
	unitsPerCase int
	floor        int
}

var (
	defaultProfile    = fallbackProfile{safetyUnits: 2, unitsPerCase: 12}
	tobaccoProfile    = fallbackProfile{safetyUnits: 5, unitsPerCase: 10, floor: 10}
	profileByCategory = map[string]fallbackProfile{
		CategoryTobacco:  tobaccoProfile,
		CategoryNicotine: tobaccoProfile,
	}
)

// ComputeRules resolves the stocking rule for an item. An exact name match
// in the override table wins, then the first override key found as a
// substring of the name, then the category fallback which scales with
// sales velocity and lead time. Malformed numbers are treated as zero.
func ComputeRules(itemName, category string, avgDailySales float64, leadTimeDays int) Rule {
	name := catalog.NormalizeName(itemName)

	if name != "" {
		for _, o := range overrides {
			if name == o.Key {
				return o.rule(RuleSourceExactName)
			}
		}
		for _, o := range overrides {
			if strings.Contains(name, o.Key) {
				return o.rule(RuleSourceKeyword)
			}
		}
	}

	resolved := ResolveCategory(category, itemName)
	profile, ok := profileByCategory[resolved]
	if !ok {
		profile = defaultProfile
	}

	avg := shared.SanitizeNumber(avgDailySales)
	if leadTimeDays < 0 {
		leadTimeDays = 0
	}
	minimum := int(math.Ceil(avg*float64(leadTimeDays) + profile.safetyUnits))
	if minimum < profile.floor {
		minimum = profile.floor
	}

	return Rule{
		UnitsPerCase: profile.unitsPerCase,
		MinimumStock: minimum,
		DaysOfSupply: leadTimeDays,
		Source:       RuleSourceCategory,
		Category:     resolved,
	}
}

func (o Override) rule(source RuleSource) Rule {
	return Rule{
		UnitsPerCase: o.UnitsPerCase,
		MinimumStock: o.MinStockUnits,
		DaysOfSupply: o.DaysOfSupply,
		Source:       source,
		MatchedKey:   o.Key,
	}
}
