package replenishment

import (
	"strings"
	"unicode"

	"github.com/stockwise/backend/internal/domain/catalog"
)

// Category names produced by ClassifyCategory
const (
	CategoryBeer          = "beer"
	CategoryWine          = "wine"
	CategoryLiquor        = "liquor"
	CategorySeltzer       = "seltzer"
	CategoryReadyToDrink  = "ready-to-drink"
	CategoryTobacco       = "tobacco"
	CategoryNicotine      = "nicotine"
	CategoryUncategorized = "uncategorized"
)

type categoryKeywords struct {
	category string
	keywords []string
}

// categoryTable is checked in order and the first category with a matching
// keyword wins. Single-word keywords match whole words; phrases match as
// substrings of the normalized name.
var categoryTable = []categoryKeywords{
	{CategoryBeer, []string{"beer", "ipa", "lager", "ale", "stout", "pilsner", "porter", "cider", "hefeweizen"}},
	{CategoryWine, []string{"wine", "cabernet", "merlot", "chardonnay", "pinot", "rose", "rosé", "prosecco", "champagne", "sauvignon", "riesling", "malbec", "zinfandel"}},
	{CategoryLiquor, []string{"liquor", "vodka", "whiskey", "whisky", "bourbon", "tequila", "rum", "gin", "scotch", "brandy", "cognac", "mezcal", "liqueur"}},
	{CategorySeltzer, []string{"seltzer", "white claw", "truly", "high noon"}},
	{CategoryReadyToDrink, []string{"ready-to-drink", "ready to drink", "rtd", "cocktail", "margarita", "mojito"}},
	{CategoryTobacco, []string{"tobacco", "cigarette", "cigarettes", "cigar", "cigars", "cigarillo", "marlboro", "newport", "camel"}},
	{CategoryNicotine, []string{"nicotine", "vape", "juul", "zyn", "pouch", "pouches", "disposable", "e-liquid"}},
}

// ClassifyCategory derives a category from a product or category name using
// the ordered keyword table. Names matching nothing are uncategorized.
func ClassifyCategory(name string) string {
	normalized := catalog.NormalizeName(name)
	if normalized == "" {
		return CategoryUncategorized
	}
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(normalized, isWordSeparator) {
		words[w] = struct{}{}
	}

	for _, entry := range categoryTable {
		for _, kw := range entry.keywords {
			if strings.ContainsAny(kw, " -") {
				if strings.Contains(normalized, kw) {
					return entry.category
				}
				continue
			}
			if _, ok := words[kw]; ok {
				return entry.category
			}
		}
	}
	return CategoryUncategorized
}

// ResolveCategory picks the category used for rule fallback. A stored
// category is classified first; when it is empty or unrecognized the
// product name is classified instead.
func ResolveCategory(storedCategory, itemName string) string {
	if c := ClassifyCategory(storedCategory); c != CategoryUncategorized {
		return c
	}
	return ClassifyCategory(itemName)
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
}
