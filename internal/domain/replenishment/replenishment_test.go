package replenishment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"IPA 6-pack", CategoryBeer},
		{"Ginger Beer", CategoryBeer},
		{"Cabernet Sauvignon 750ml", CategoryWine},
		{"Grey Goose Vodka", CategoryLiquor},
		{"Hard Seltzer Variety", CategorySeltzer},
		{"White Claw Mango", CategorySeltzer},
		{"Canned Cocktail Paloma", CategoryReadyToDrink},
		{"Marlboro Gold Box", CategoryTobacco},
		{"ZYN Cool Mint 6mg", CategoryNicotine},
		{"Bag of Ice", CategoryUncategorized},
		{"", CategoryUncategorized},
		{"Kale Chips", CategoryUncategorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCategory(tt.name))
		})
	}
}

func TestClassifyCategory_OrderMatters(t *testing.T) {
	// beer is checked before liquor
	assert.Equal(t, CategoryBeer, ClassifyCategory("Bourbon Barrel Stout"))
	// wine is checked before ready-to-drink
	assert.Equal(t, CategoryWine, ClassifyCategory("Wine Cocktail"))
}

func TestResolveCategory(t *testing.T) {
	assert.Equal(t, CategoryWine, ResolveCategory("Red Wine", "Mystery Bottle"))
	assert.Equal(t, CategoryBeer, ResolveCategory("", "IPA 6-pack"))
	assert.Equal(t, CategoryLiquor, ResolveCategory("Specials", "Spiced Rum"))
}

func TestComputeRules_ExactOverrideWinsOverCategory(t *testing.T) {
	rule := ComputeRules("  Marlboro LIGHTS ", "tobacco", 50, 7)

	assert.Equal(t, RuleSourceExactName, rule.Source)
	assert.Equal(t, 100, rule.MinimumStock)
	assert.Equal(t, 14, rule.DaysOfSupply)
	assert.Equal(t, 10, rule.UnitsPerCase)
}

func TestComputeRules_KeywordPriority(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"Marlboro Lights 100s Box", "marlboro lights"},
		{"Marlboro Red Short", "marlboro red"},
		{"Tito's Handmade Vodka 750ml", "tito's"},
		{"Fireball 50ml", "fireball"},
		{"Bud Light 30 Pack", "30 pack"},
		{"House Red 750ml", "750"},
		{"Jack Daniels 1.75L", "1.75"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := ComputeRules(tt.name, "", 0, 7)
			assert.Equal(t, RuleSourceKeyword, rule.Source)
			assert.Equal(t, tt.key, rule.MatchedKey)
		})
	}
}

func TestComputeRules_KeywordIgnoresVelocity(t *testing.T) {
	slow := ComputeRules("Newport Menthol", "tobacco", 0, 7)
	fast := ComputeRules("Newport Menthol", "tobacco", 500, 30)
	assert.Equal(t, slow, fast)
}

func TestComputeRules_CategoryFallback(t *testing.T) {
	tests := []struct {
		name     string
		item     string
		category string
		avg      float64
		lead     int
		min      int
		perCase  int
		resolved string
	}{
		{"beer", "IPA 6-pack", "beer", 1.5, 3, 7, 12, CategoryBeer},
		{"default safety only", "Bag of Ice", "", 0, 7, 2, 12, CategoryUncategorized},
		{"wine uses default profile", "Pinot Noir", "Wine", 1, 7, 9, 12, CategoryWine},
		{"tobacco floor", "Loose Leaf Tobacco", "tobacco", 0.2, 7, 10, 10, CategoryTobacco},
		{"tobacco scales above floor", "Loose Leaf Tobacco", "tobacco", 2, 7, 19, 10, CategoryTobacco},
		{"nicotine", "Disposable Vape", "", 1, 7, 12, 10, CategoryNicotine},
		{"malformed average", "Bag of Ice", "", math.NaN(), 7, 2, 12, CategoryUncategorized},
		{"negative lead time", "Bag of Ice", "", 3, -4, 2, 12, CategoryUncategorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := ComputeRules(tt.item, tt.category, tt.avg, tt.lead)
			assert.Equal(t, RuleSourceCategory, rule.Source)
			assert.Equal(t, tt.min, rule.MinimumStock)
			assert.Equal(t, tt.perCase, rule.UnitsPerCase)
			assert.Equal(t, tt.resolved, rule.Category)
		})
	}
}

func TestRoundUpToCase(t *testing.T) {
	assert.Equal(t, 20, RoundUpToCase(12, 10))
	assert.Equal(t, 12, RoundUpToCase(7, 12))
	assert.Equal(t, 24, RoundUpToCase(24, 12))
	assert.Equal(t, 3, RoundUpToCase(3, 1))
	assert.Equal(t, 0, RoundUpToCase(0, 12))
	assert.Equal(t, 0, RoundUpToCase(-5, 12))
}

func TestRecommend(t *testing.T) {
	t.Run("rounds shortfall to whole case", func(t *testing.T) {
		rec := Recommend(Rule{MinimumStock: 15, UnitsPerCase: 10}, 3, 0)
		assert.Equal(t, 20, rec.SuggestedOrderUnits)
		assert.True(t, rec.LowStock)
	})

	t.Run("stock at minimum", func(t *testing.T) {
		rec := Recommend(Rule{MinimumStock: 6, UnitsPerCase: 12}, 6, 0)
		assert.Equal(t, 0, rec.SuggestedOrderUnits)
		assert.False(t, rec.LowStock)
	})

	t.Run("overstocked", func(t *testing.T) {
		rec := Recommend(Rule{MinimumStock: 6, UnitsPerCase: 12}, 40, 0)
		assert.Equal(t, 0, rec.SuggestedOrderUnits)
		assert.False(t, rec.LowStock)
	})

	t.Run("fractional stock", func(t *testing.T) {
		rec := Recommend(Rule{MinimumStock: 5, UnitsPerCase: 1}, 2.5, 0)
		assert.Equal(t, 3, rec.SuggestedOrderUnits)
	})

	t.Run("malformed quantity treated as zero", func(t *testing.T) {
		rec := Recommend(Rule{MinimumStock: 4, UnitsPerCase: 1}, math.NaN(), math.Inf(1))
		assert.Equal(t, 0.0, rec.CurrentQuantity)
		assert.Equal(t, 0.0, rec.AvgDailySales)
		assert.Equal(t, 4, rec.SuggestedOrderUnits)
	})
}

func TestEndToEnd_IPASixPack(t *testing.T) {
	avg := 21.0 / 14.0
	rule := ComputeRules("IPA 6-pack", "beer", avg, 3)
	rec := Recommend(rule, 0, avg)

	assert.Equal(t, RuleSourceCategory, rule.Source)
	assert.Equal(t, 7, rec.MinimumStock)
	assert.Equal(t, 12, rec.SuggestedOrderUnits)
	assert.True(t, rec.LowStock)
}

func TestOverrides_ReturnsCopy(t *testing.T) {
	o := Overrides()
	o[0].MinStockUnits = 1
	assert.Equal(t, 100, Overrides()[0].MinStockUnits)
}
