// Package bundler assembles scored candidate variants into ranked gift
// bundles using strategy-specific packing passes.
package bundler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

const (
	// companionSlackRatio lets a hero companion overshoot the remaining
	// budget by 5% so near-misses still complete a bundle.
	companionSlackRatio = 0.05
	// packEarlyExitRatio stops a greedy pack once the bundle holds enough
	// items and has consumed 70% of the budget.
	packEarlyExitRatio = 0.7
	// minBundleBudgetRatio rejects bundles that use under 30% of the budget.
	minBundleBudgetRatio = 0.3
	// minCompanionPrice filters out trinkets when filling around a hero item.
	minCompanionPrice = 5.0
	// maxThemeTags bounds the theme tag list on a bundle.
	maxThemeTags = 5
)

// Config bounds bundle assembly.
type Config struct {
	MinItems        int
	MaxItems        int
	BudgetTolerance float64
}

// DefaultConfig returns the standard assembly bounds.
func DefaultConfig() Config {
	return Config{
		MinItems:        2,
		MaxItems:        6,
		BudgetTolerance: 0.1,
	}
}

// RankWeights are the factor weights for final bundle ranking. They sum to
// 1.0 in the defaults; database scoring rules may override individual
// factors.
type RankWeights struct {
	Relevance       float64
	BudgetFit       float64
	Diversity       float64
	Novelty         float64
	InventoryHealth float64
}

// DefaultRankWeights returns the built-in ranking weights.
func DefaultRankWeights() RankWeights {
	return RankWeights{
		Relevance:       0.45,
		BudgetFit:       0.25,
		Diversity:       0.15,
		Novelty:         0.10,
		InventoryHealth: 0.05,
	}
}

// Generator assembles bundles. Zero-value configs are replaced with
// defaults so a Generator is always usable.
type Generator struct {
	config  Config
	weights RankWeights
}

// New creates a Generator with the given bounds and ranking weights.
func New(config Config, weights RankWeights) *Generator {
	if config.MinItems <= 0 {
		config = DefaultConfig()
	}
	if weights == (RankWeights{}) {
		weights = DefaultRankWeights()
	}
	return &Generator{config: config, weights: weights}
}

// draft is a bundle under construction; candidates carry the scoring
// context that BundleItem no longer has.
type draft struct {
	candidates []models.CandidateVariant
	singleItem bool
}

func (d draft) total() float64 {
	var sum float64
	for _, c := range d.candidates {
		sum += c.PriceValue
	}
	return sum
}

// Assemble runs the strategy passes in order over a shared used-variant set,
// so later passes never reuse a variant an earlier pass claimed. The result
// is ranked by weighted score (stable on ties) and truncated to maxBundles.
func (g *Generator) Assemble(candidates []models.CandidateVariant, budget float64, intent models.GiftIntent, maxBundles int) []models.PartialBundle {
	if len(candidates) == 0 || budget <= 0 {
		return []models.PartialBundle{}
	}

	used := make(map[string]bool)
	var drafts []draft

	if intent.BudgetStrategy == models.StrategyBalanced {
		drafts = append(drafts, g.balancedPass(candidates, budget, used)...)
	}
	if intent.BudgetStrategy == models.StrategyHero || len(drafts) < 2 {
		drafts = append(drafts, g.heroPass(candidates, budget, used, 2)...)
	}
	if intent.BudgetStrategy == models.StrategyStocking || len(drafts) == 0 {
		drafts = append(drafts, g.stockingPass(candidates, budget, used)...)
	}
	if len(drafts) == 0 {
		drafts = g.singleItemPass(candidates, budget)
	}

	return g.rank(drafts, budget, intent, maxBundles)
}

// balancedPass packs up to three mid-size bundles of 3-4 items each.
func (g *Generator) balancedPass(candidates []models.CandidateVariant, budget float64, used map[string]bool) []draft {
	var drafts []draft
	for attempt := 0; attempt < 3; attempt++ {
		d, ok := g.greedyPack(candidates, budget, used, 3, 4)
		if !ok {
			break
		}
		drafts = append(drafts, d)
	}
	return drafts
}

// heroPass anchors each bundle on one item priced at 30-60% of the budget
// and fills the remainder with smaller companions.
func (g *Generator) heroPass(candidates []models.CandidateVariant, budget float64, used map[string]bool, targetCount int) []draft {
	var heroes []models.CandidateVariant
	for _, c := range candidates {
		if used[c.Variant.ID] {
			continue
		}
		if c.PriceValue >= budget*0.3 && c.PriceValue <= budget*0.6 {
			heroes = append(heroes, c)
		}
		if len(heroes) >= targetCount*2 {
			break
		}
	}

	var drafts []draft
	for _, hero := range heroes {
		if len(drafts) >= targetCount {
			break
		}
		if used[hero.Variant.ID] {
			continue
		}

		d := draft{candidates: []models.CandidateVariant{hero}}
		remaining := budget - hero.PriceValue
		for _, c := range candidates {
			if len(d.candidates) >= 3 {
				break
			}
			if c.Variant.ID == hero.Variant.ID || used[c.Variant.ID] || d.contains(c.Variant.ID) {
				continue
			}
			if c.PriceValue < minCompanionPrice {
				continue
			}
			if c.PriceValue > remaining*(1+companionSlackRatio) {
				continue
			}
			d.candidates = append(d.candidates, c)
			remaining -= c.PriceValue
		}

		if len(d.candidates) < 2 {
			continue
		}
		total := d.total()
		if total > budget*(1+g.config.BudgetTolerance) || total < budget*minBundleBudgetRatio {
			continue
		}

		for _, c := range d.candidates {
			used[c.Variant.ID] = true
		}
		drafts = append(drafts, d)
	}
	return drafts
}

// stockingPass packs one bundle of many small items, each at most 25% of
// the budget.
func (g *Generator) stockingPass(candidates []models.CandidateVariant, budget float64, used map[string]bool) []draft {
	small := make([]models.CandidateVariant, 0, len(candidates))
	for _, c := range candidates {
		if c.PriceValue <= budget*0.25 {
			small = append(small, c)
		}
	}

	d, ok := g.greedyPack(small, budget, used, 4, 6)
	if !ok {
		return nil
	}
	return []draft{d}
}

// singleItemPass is the last resort: one-item bundles from premium items
// near the full budget, slightly over included.
func (g *Generator) singleItemPass(candidates []models.CandidateVariant, budget float64) []draft {
	var drafts []draft
	for _, c := range candidates {
		if len(drafts) >= 3 {
			break
		}
		inBand := c.PriceValue >= budget*0.8 && c.PriceValue <= budget
		slightlyOver := c.PriceValue > budget && c.PriceValue <= budget*1.1
		if !inBand && !slightlyOver {
			continue
		}
		drafts = append(drafts, draft{candidates: []models.CandidateVariant{c}, singleItem: true})
	}
	return drafts
}

// greedyPack walks the (relevance-ordered) candidates, adding each item
// that fits the budget, the item cap, and the per-category cap of two. It
// stops early once minItems are packed and 70% of the budget is spent.
func (g *Generator) greedyPack(candidates []models.CandidateVariant, budget float64, used map[string]bool, minItems, maxItems int) (draft, bool) {
	var d draft
	var total float64
	categoryCount := make(map[string]int)

	for _, c := range candidates {
		if used[c.Variant.ID] {
			continue
		}
		if len(d.candidates) >= maxItems {
			break
		}
		if total+c.PriceValue > budget {
			continue
		}
		if categoryCount[c.Category] >= 2 {
			continue
		}

		d.candidates = append(d.candidates, c)
		total += c.PriceValue
		categoryCount[c.Category]++

		if len(d.candidates) >= minItems && total >= budget*packEarlyExitRatio {
			break
		}
	}

	if len(d.candidates) < minItems || total < budget*minBundleBudgetRatio {
		return draft{}, false
	}
	for _, c := range d.candidates {
		used[c.Variant.ID] = true
	}
	return d, true
}

func (d draft) contains(variantID string) bool {
	for _, c := range d.candidates {
		if c.Variant.ID == variantID {
			return true
		}
	}
	return false
}

// rank scores drafts, orders them (stable descending), truncates to
// maxBundles and materializes the partial bundles. Rank scores are an
// ordering device only and are not exposed on the result.
func (g *Generator) rank(drafts []draft, budget float64, intent models.GiftIntent, maxBundles int) []models.PartialBundle {
	type scored struct {
		draft draft
		score float64
	}
	list := make([]scored, 0, len(drafts))
	for _, d := range drafts {
		list = append(list, scored{draft: d, score: g.score(d, budget, intent)})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})
	if maxBundles > 0 && len(list) > maxBundles {
		list = list[:maxBundles]
	}

	bundles := make([]models.PartialBundle, 0, len(list))
	for _, s := range list {
		bundles = append(bundles, g.materialize(s.draft, budget))
	}
	return bundles
}

func (g *Generator) score(d draft, budget float64, intent models.GiftIntent) float64 {
	w := g.weights
	return w.Relevance*relevanceScore(d, intent) +
		w.BudgetFit*budgetFitScore(d.total(), budget) +
		w.Diversity*diversityScore(d.candidates) +
		w.Novelty*noveltyScore(len(d.candidates)) +
		w.InventoryHealth*1.0
}

// relevanceScore is the fraction of the request's signals the bundle
// covers. A request with no signals scores a neutral 0.5.
func relevanceScore(d draft, intent models.GiftIntent) float64 {
	signalCount := len(intent.SoftPrefs) + len(intent.TargetCategories)
	if signalCount == 0 {
		return 0.5
	}
	matched := make(map[string]bool)
	for _, c := range d.candidates {
		for _, s := range c.MatchedSignals {
			matched[s] = true
		}
	}
	score := float64(len(matched)) / float64(signalCount)
	if score > 1 {
		return 1
	}
	return score
}

// budgetFitScore rewards landing in the 90-100% band, discounts underspend
// linearly, and punishes overspend steeply.
func budgetFitScore(total, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	ratio := total / budget
	switch {
	case ratio >= 0.9 && ratio <= 1.0:
		return 1.0
	case ratio < 0.9:
		return ratio * 0.8
	default:
		over := 1.0 - 3.0*(ratio-1.0)
		if over < 0 {
			return 0
		}
		return over
	}
}

func noveltyScore(itemCount int) float64 {
	score := float64(itemCount) / 4.0
	if score > 1 {
		return 1
	}
	return score
}

// diversityScore blends category spread, price range spread and tag
// variety. Single-item bundles get a flat low score.
func diversityScore(candidates []models.CandidateVariant) float64 {
	n := len(candidates)
	if n <= 1 {
		return 0.2
	}

	categories := make(map[string]bool)
	priceRanges := make(map[string]bool)
	tags := make(map[string]bool)
	for _, c := range candidates {
		categories[c.Category] = true
		priceRanges[priceRange(c.PriceValue)] = true
		for _, t := range c.Product.Tags {
			tags[t] = true
		}
	}

	tagVariety := float64(len(tags)) / float64(n*3)
	if tagVariety > 1 {
		tagVariety = 1
	}
	return 0.5*float64(len(categories))/float64(n) +
		0.3*float64(len(priceRanges))/float64(n) +
		0.2*tagVariety
}

func priceRange(price float64) string {
	switch {
	case price < 15:
		return "low"
	case price < 40:
		return "mid"
	case price < 80:
		return "high"
	default:
		return "premium"
	}
}

// materialize converts a draft into the wire-shaped partial bundle.
func (g *Generator) materialize(d draft, budget float64) models.PartialBundle {
	items := make([]models.BundleItem, 0, len(d.candidates))
	for _, c := range d.candidates {
		reason := itemReason(c)
		if d.singleItem {
			reason = fmt.Sprintf("Premium %s item that matches the gift intent", c.Category)
		}
		items = append(items, models.BundleItem{
			ProductID: c.Product.ID,
			VariantID: c.Variant.ID,
			Title:     c.Product.Title,
			ImageURL:  c.Product.BestImageURL(c.Variant),
			Quantity:  1,
			UnitPrice: c.PriceValue,
			Tags:      c.Product.Tags,
			Reason:    reason,
		})
	}

	total := d.total()
	return models.PartialBundle{
		ID:    bundleID(items, budget),
		Items: items,
		Price: models.PriceBlock{
			Subtotal:   total,
			Total:      total,
			NearBudget: total > budget,
		},
		DiversityScore: diversityScore(d.candidates),
		ThemeTags:      themeTags(d.candidates),
	}
}

func itemReason(c models.CandidateVariant) string {
	if len(c.MatchedSignals) == 0 {
		return ""
	}
	return fmt.Sprintf("Matches %s preferences", strings.Join(c.MatchedSignals, ", "))
}

// themeTags collects up to five distinct theme/style/interest tags across
// the bundle, in item order.
func themeTags(candidates []models.CandidateVariant) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		for _, tag := range c.Product.Tags {
			if len(out) >= maxThemeTags {
				return out
			}
			if seen[tag] {
				continue
			}
			if strings.HasPrefix(tag, "theme:") ||
				strings.HasPrefix(tag, "style:") ||
				strings.HasPrefix(tag, "interest:") {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}

// bundleID derives a stable id from the member variants and the budget, so
// identical bundles across requests share an id.
func bundleID(items []models.BundleItem, budget float64) string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VariantID)
	}
	sort.Strings(ids)
	sum := sha256.Sum256([]byte(strings.Join(ids, "|") + fmt.Sprintf("%.2f", budget)))
	return "bundle_" + hex.EncodeToString(sum[:])[:16]
}
