package llm

import (
	"context"
	"strings"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

// RuleBasedClient derives intents and enrichment from the profile and
// prompt alone, with no external calls. It serves as the development-mode
// client when no API key is configured and as a deterministic test double.
type RuleBasedClient struct{}

// NewRuleBasedClient returns the deterministic client.
func NewRuleBasedClient() *RuleBasedClient {
	return &RuleBasedClient{}
}

// ExtractIntent maps profile fields to prefixed signals and scans the
// prompt for a small keyword vocabulary. It never fails.
func (c *RuleBasedClient) ExtractIntent(_ context.Context, profile models.RecipientProfile, prompt string, budget float64) (models.GiftIntent, error) {
	var hard []string
	for _, dislike := range profile.Dislikes {
		hard = append(hard, "no:"+dislike)
	}
	for _, allergy := range profile.Allergies {
		hard = append(hard, "allergen:no:"+allergy)
	}
	hard = append(hard, profile.Constraints...)

	var soft []string
	for _, interest := range profile.Interests {
		soft = append(soft, "interest:"+interest)
	}
	for _, style := range profile.Style {
		soft = append(soft, "style:"+style)
	}

	lowerPrompt := strings.ToLower(prompt)
	if strings.Contains(lowerPrompt, "cozy") {
		soft = append(soft, "theme:cozy")
	}
	if strings.Contains(lowerPrompt, "birthday") {
		soft = append(soft, "theme:birthday")
	}
	if strings.Contains(lowerPrompt, "tea") {
		soft = append(soft, "interest:tea")
	}
	if strings.Contains(lowerPrompt, "reading") {
		soft = append(soft, "interest:reading")
	}

	var categories []string
	if hasInterest(profile, "tea") || strings.Contains(lowerPrompt, "tea") {
		categories = append(categories, "tea accessories", "mugs")
	}
	if hasInterest(profile, "reading") || strings.Contains(lowerPrompt, "reading") {
		categories = append(categories, "books", "stationery")
	}
	if strings.Contains(lowerPrompt, "cozy") {
		categories = append(categories, "home textiles", "blankets")
	}

	strategy := models.StrategyBalanced
	if budget < 30 {
		strategy = models.StrategyStocking
	} else if budget > 100 {
		strategy = models.StrategyHero
	}

	return models.GiftIntent{
		HardConstraints:  models.ParseSignals(hard),
		SoftPrefs:        models.ParseSignals(soft),
		TargetCategories: categories,
		BudgetStrategy:   strategy,
	}, nil
}

// EnrichBundles attaches templated titles and rationales keyed off the
// bundle contents.
func (c *RuleBasedClient) EnrichBundles(_ context.Context, bundles []models.PartialBundle, _ models.RecipientProfile, _ string) ([]models.GiftBundle, error) {
	enriched := make([]models.GiftBundle, 0, len(bundles))
	for i, bundle := range bundles {
		title, rationale := describeBundle(bundle, i)
		enriched = append(enriched, bundle.Enriched(title, rationale))
	}
	return enriched, nil
}

func describeBundle(bundle models.PartialBundle, index int) (string, string) {
	hasTea := false
	hasCozy := false
	for _, item := range bundle.Items {
		lowerTitle := strings.ToLower(item.Title)
		if strings.Contains(lowerTitle, "tea") || containsTag(item.Tags, "interest:tea") {
			hasTea = true
		}
		if strings.Contains(lowerTitle, "blanket") || strings.Contains(lowerTitle, "throw") || containsTag(item.Tags, "theme:cozy") {
			hasCozy = true
		}
	}

	switch {
	case hasTea && hasCozy:
		return "Cozy Tea Evening Kit",
			"Perfect for quiet evenings with a warm cup of tea and relaxation. The combination creates a complete cozy experience."
	case hasTea:
		return "Tea Lover's Collection",
			"Curated for the tea enthusiast, featuring quality accessories and blends for the perfect brewing experience."
	case hasCozy:
		return "Comfort & Coziness Set",
			"Designed to create a warm, comfortable atmosphere for relaxation and unwinding at home."
	case len(bundle.Items) >= 4:
		return "Delightful Surprise Bundle",
			"A diverse collection of thoughtful items that cater to multiple interests and occasions."
	case len(bundle.Items) == 1:
		return "Premium Single Gift",
			"A carefully selected high-quality item that makes a meaningful statement on its own."
	default:
		return PlaceholderTitle(index), PlaceholderRationale
	}
}

func hasInterest(profile models.RecipientProfile, interest string) bool {
	for _, i := range profile.Interests {
		if strings.EqualFold(i, interest) {
			return true
		}
	}
	return false
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
