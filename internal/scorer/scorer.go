// Package scorer turns raw catalog products into budget-admissible,
// relevance-scored candidate variants.
package scorer

import (
	"sort"
	"strings"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

// maxPriceBudgetRatio caps a single candidate at 90% of the budget so a
// bundle always has room for at least one more item.
const maxPriceBudgetRatio = 0.9

// Weights are the per-factor relevance increments. Defaults ship in code;
// active scoring rules from the database override them.
type Weights struct {
	SoftPrefMatch float64
	CategoryMatch float64
	PriceBand     float64
}

// DefaultWeights returns the built-in relevance increments.
func DefaultWeights() Weights {
	return Weights{
		SoftPrefMatch: 0.3,
		CategoryMatch: 0.2,
		PriceBand:     0.1,
	}
}

// Score selects the best variant of each product, filters out variants that
// would swallow the budget, and returns candidates sorted by descending
// relevance. The sort is stable, so products tied on relevance keep their
// catalog order and equal inputs always produce equal output order.
func Score(products []models.Product, intent models.GiftIntent, budget float64, weights Weights) []models.CandidateVariant {
	candidates := make([]models.CandidateVariant, 0, len(products))

	for _, product := range products {
		variant, ok := bestVariant(product)
		if !ok {
			continue
		}
		price := variant.Price.Value()
		if price > budget*maxPriceBudgetRatio {
			continue
		}

		score, matched := relevance(product, intent, price, budget, weights)
		candidates = append(candidates, models.CandidateVariant{
			Product:        product,
			Variant:        variant,
			RelevanceScore: score,
			Category:       categorize(product),
			PriceValue:     price,
			MatchedSignals: matched,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RelevanceScore > candidates[j].RelevanceScore
	})
	return candidates
}

// bestVariant prefers the first sellable variant and falls back to the
// first variant when none are available for sale.
func bestVariant(product models.Product) (models.Variant, bool) {
	if len(product.Variants) == 0 {
		return models.Variant{}, false
	}
	for _, v := range product.Variants {
		if v.AvailableForSale {
			return v, true
		}
	}
	return product.Variants[0], true
}

func relevance(product models.Product, intent models.GiftIntent, price, budget float64, weights Weights) (float64, []string) {
	var score float64
	var matched []string

	for _, pref := range intent.SoftPrefs {
		if product.HasTag(pref.String()) {
			score += weights.SoftPrefMatch
			matched = append(matched, pref.String())
		}
	}

	lowerType := strings.ToLower(product.ProductType)
	lowerTitle := strings.ToLower(product.Title)
	for _, category := range intent.TargetCategories {
		c := strings.ToLower(category)
		if c == "" {
			continue
		}
		if strings.Contains(lowerType, c) || strings.Contains(lowerTitle, c) {
			score += weights.CategoryMatch
			matched = append(matched, "category_match")
			break
		}
	}

	if budget > 0 {
		ratio := price / budget
		if ratio > 0.1 && ratio < 0.6 {
			score += weights.PriceBand
		}
	}

	return score, matched
}

// categorize collapses tags and titles into the coarse category buckets the
// bundler uses for diversity caps.
func categorize(product models.Product) string {
	lowerTitle := strings.ToLower(product.Title)
	if product.HasTag("interest:tea") || strings.Contains(lowerTitle, "tea") {
		return "beverages"
	}
	if product.HasTag("theme:cozy") || product.HasTag("home") {
		return "home"
	}
	for _, tag := range product.Tags {
		if strings.HasPrefix(tag, "style:") {
			return "style"
		}
	}
	if product.ProductType != "" {
		return product.ProductType
	}
	return "general"
}
