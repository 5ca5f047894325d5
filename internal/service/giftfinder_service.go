package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/bundler"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/cache"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/catalog"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/llm"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/scorer"
)

const (
	defaultMaxBundles  = 6
	maxMaxBundles      = 12
	fallbackMaxBundles = 3
	maxBudget          = 10000

	resultCacheTTL  = 5 * time.Minute
	intentCacheTTL  = 30 * time.Minute
	catalogCacheTTL = 5 * time.Minute

	// Below this candidate count, diagnostics flag a thin selection.
	minHealthySelection = 20
)

// RuleStore loads tunable scoring weights and persists bundle snapshots.
type RuleStore interface {
	GetActiveRules() ([]models.ScoringRule, error)
	UpsertSnapshot(profileHash, bundleID string, total float64, rank int) error
	ClearSnapshots(profileHash string) error
}

// GiftFinderService orchestrates the full pipeline: intent extraction,
// catalog search, scoring, assembly, enrichment and diagnostics. The redis
// client and rule store are optional; with either absent the service runs
// uncached and on default weights.
type GiftFinderService struct {
	llm          llm.Client
	catalog      catalog.Searcher
	repo         RuleStore
	rdb          *redis.Client
	intentCache  *cache.Cache
	catalogCache *cache.Cache
	config       bundler.Config
}

func NewGiftFinderService(
	llmClient llm.Client,
	searcher catalog.Searcher,
	repo RuleStore,
	rdb *redis.Client,
	intentCacheSize, catalogCacheSize int,
) *GiftFinderService {
	return &GiftFinderService{
		llm:          llmClient,
		catalog:      searcher,
		repo:         repo,
		rdb:          rdb,
		intentCache:  cache.New(intentCacheSize),
		catalogCache: cache.New(catalogCacheSize),
		config:       bundler.DefaultConfig(),
	}
}

// GenerateBundles runs the pipeline for one request. Errors are returned
// only for invalid input; generation failures degrade through a fallback
// pass and, at worst, an empty result with diagnostics.
func (s *GiftFinderService) GenerateBundles(ctx context.Context, req models.GiftFinderRequest) (*models.GiftFinderResult, error) {
	if req.Budget <= 0 {
		return nil, fmt.Errorf("budget must be positive")
	}
	if req.Budget >= maxBudget {
		return nil, fmt.Errorf("budget must be below %d", maxBudget)
	}
	if req.MaxBundles <= 0 {
		req.MaxBundles = defaultMaxBundles
	}
	if req.MaxBundles > maxMaxBundles {
		req.MaxBundles = maxMaxBundles
	}

	cacheKey := "gift_bundles:" + requestHash(req)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var result models.GiftFinderResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				slog.Debug("gift bundles cache hit", "key", cacheKey)
				return &result, nil
			}
		}
	}

	scoreWeights, rankWeights := s.loadWeights()

	result, err := s.generate(ctx, req, scoreWeights, rankWeights)
	if err != nil {
		slog.Warn("primary generation failed, using fallback", "error", err)
		result, err = s.generateFallback(ctx, req, scoreWeights, rankWeights)
	}
	if err != nil {
		slog.Warn("fallback generation failed", "error", err)
		result = &models.GiftFinderResult{
			Bundles: []models.GiftBundle{},
			Diagnostics: &models.Diagnostics{
				MatchedSignals: []string{},
				UnmetConstraints: []string{
					"Unable to generate bundles - please try different criteria",
				},
				InventoryNotes: []string{
					"Consider increasing budget or broadening preferences",
				},
			},
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		}
	}

	if s.rdb != nil {
		if data, err := json.Marshal(result); err == nil {
			s.rdb.Set(ctx, cacheKey, data, resultCacheTTL)
		}
	}

	return result, nil
}

// generate is the primary pipeline pass.
func (s *GiftFinderService) generate(
	ctx context.Context,
	req models.GiftFinderRequest,
	scoreWeights scorer.Weights,
	rankWeights bundler.RankWeights,
) (*models.GiftFinderResult, error) {
	intent, err := s.extractIntent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("extract intent: %w", err)
	}

	products, err := s.searchProducts(ctx, intent, req.Budget)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products matched the search")
	}

	candidates := scorer.Score(products, intent, req.Budget, scoreWeights)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates within budget")
	}

	generator := bundler.New(s.config, rankWeights)
	partials := generator.Assemble(candidates, req.Budget, intent, req.MaxBundles)

	bundles := s.enrich(ctx, partials, req.Profile, req.Prompt)
	diagnostics := buildDiagnostics(candidates, intent, nil)

	s.persistSnapshots(req, bundles)

	return &models.GiftFinderResult{
		Bundles:     bundles,
		Diagnostics: diagnostics,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// generateFallback retries with a profile-derived intent, a smaller bundle
// count and no LLM dependency.
func (s *GiftFinderService) generateFallback(
	ctx context.Context,
	req models.GiftFinderRequest,
	scoreWeights scorer.Weights,
	rankWeights bundler.RankWeights,
) (*models.GiftFinderResult, error) {
	intent := fallbackIntent(req.Profile)

	products, err := s.searchProducts(ctx, intent, req.Budget)
	if err != nil {
		return nil, fmt.Errorf("fallback search: %w", err)
	}

	candidates := scorer.Score(products, intent, req.Budget, scoreWeights)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("fallback produced no candidates")
	}

	generator := bundler.New(s.config, rankWeights)
	partials := generator.Assemble(candidates, req.Budget, intent, fallbackMaxBundles)

	bundles := make([]models.GiftBundle, 0, len(partials))
	for i, partial := range partials {
		bundles = append(bundles, partial.Enriched(llm.PlaceholderTitle(i), llm.PlaceholderRationale))
	}

	diagnostics := buildDiagnostics(candidates, intent, []string{
		"Used simplified search due to processing constraints",
	})

	s.persistSnapshots(req, bundles)

	return &models.GiftFinderResult{
		Bundles:     bundles,
		Diagnostics: diagnostics,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// extractIntent memoizes LLM intent extraction per profile+prompt.
func (s *GiftFinderService) extractIntent(ctx context.Context, req models.GiftFinderRequest) (models.GiftIntent, error) {
	key := "intent:" + profileHash(req.Profile, req.Prompt)
	if cached, ok := s.intentCache.Get(key); ok {
		if intent, ok := cached.(models.GiftIntent); ok {
			return intent, nil
		}
	}

	intent, err := s.llm.ExtractIntent(ctx, req.Profile, req.Prompt, req.Budget)
	if err != nil {
		return models.GiftIntent{}, err
	}

	s.intentCache.Set(key, intent, intentCacheTTL)
	return intent, nil
}

// searchProducts memoizes catalog searches per intent+budget.
func (s *GiftFinderService) searchProducts(ctx context.Context, intent models.GiftIntent, budget float64) ([]models.Product, error) {
	key := "catalog:" + intentHash(intent, budget)
	if cached, ok := s.catalogCache.Get(key); ok {
		if products, ok := cached.([]models.Product); ok {
			return products, nil
		}
	}

	products, err := s.catalog.Search(ctx, intent, budget)
	if err != nil {
		return nil, err
	}

	s.catalogCache.Set(key, products, catalogCacheTTL)
	return products, nil
}

// enrich attaches titles and rationales; an enrichment failure downgrades
// to placeholders instead of failing the request.
func (s *GiftFinderService) enrich(ctx context.Context, partials []models.PartialBundle, profile models.RecipientProfile, prompt string) []models.GiftBundle {
	bundles, err := s.llm.EnrichBundles(ctx, partials, profile, prompt)
	if err == nil && len(bundles) == len(partials) {
		return bundles
	}
	if err != nil {
		slog.Warn("bundle enrichment failed, using placeholders", "error", err)
	}

	bundles = make([]models.GiftBundle, 0, len(partials))
	for i, partial := range partials {
		bundles = append(bundles, partial.Enriched(llm.PlaceholderTitle(i), llm.PlaceholderRationale))
	}
	return bundles
}

// persistSnapshots records generated bundles in the background.
func (s *GiftFinderService) persistSnapshots(req models.GiftFinderRequest, bundles []models.GiftBundle) {
	if s.repo == nil || len(bundles) == 0 {
		return
	}
	hash := profileHash(req.Profile, req.Prompt)
	snapshot := make([]models.GiftBundle, len(bundles))
	copy(snapshot, bundles)
	go func() {
		if err := s.repo.ClearSnapshots(hash); err != nil {
			slog.Warn("failed to clear snapshots", "error", err)
			return
		}
		for rank, bundle := range snapshot {
			if err := s.repo.UpsertSnapshot(hash, bundle.ID, bundle.Price.Total, rank+1); err != nil {
				slog.Warn("failed to persist snapshot", "bundle_id", bundle.ID, "error", err)
			}
		}
	}()
}

// GetRules returns the active scoring rules, or the built-in defaults when
// no database is attached.
func (s *GiftFinderService) GetRules(_ context.Context) ([]models.ScoringRule, error) {
	if s.repo == nil {
		return defaultRules(), nil
	}
	return s.repo.GetActiveRules()
}

// loadWeights maps active scoring rules onto the candidate and ranking
// weights, keeping defaults for any factor without an active rule.
func (s *GiftFinderService) loadWeights() (scorer.Weights, bundler.RankWeights) {
	scoreWeights := scorer.DefaultWeights()
	rankWeights := bundler.DefaultRankWeights()
	if s.repo == nil {
		return scoreWeights, rankWeights
	}

	rules, err := s.repo.GetActiveRules()
	if err != nil {
		slog.Warn("could not load scoring rules, using defaults", "error", err)
		return scoreWeights, rankWeights
	}

	for _, rule := range rules {
		switch rule.RuleType {
		case "softpref_match":
			scoreWeights.SoftPrefMatch = rule.Weight
		case "category_match":
			scoreWeights.CategoryMatch = rule.Weight
		case "price_band":
			scoreWeights.PriceBand = rule.Weight
		case "relevance":
			rankWeights.Relevance = rule.Weight
		case "budget_fit":
			rankWeights.BudgetFit = rule.Weight
		case "diversity":
			rankWeights.Diversity = rule.Weight
		case "novelty":
			rankWeights.Novelty = rule.Weight
		case "inventory_health":
			rankWeights.InventoryHealth = rule.Weight
		}
	}
	return scoreWeights, rankWeights
}

func defaultRules() []models.ScoringRule {
	sw := scorer.DefaultWeights()
	rw := bundler.DefaultRankWeights()
	now := time.Now().UTC()
	types := []struct {
		name     string
		ruleType string
		weight   float64
	}{
		{"Bundle Relevance", "relevance", rw.Relevance},
		{"Budget Fit", "budget_fit", rw.BudgetFit},
		{"Category Diversity", "diversity", rw.Diversity},
		{"Novelty Bonus", "novelty", rw.Novelty},
		{"Inventory Health", "inventory_health", rw.InventoryHealth},
		{"Soft Preference Match", "softpref_match", sw.SoftPrefMatch},
		{"Category Match", "category_match", sw.CategoryMatch},
		{"Price Band Fit", "price_band", sw.PriceBand},
	}
	rules := make([]models.ScoringRule, 0, len(types))
	for i, t := range types {
		rules = append(rules, models.ScoringRule{
			ID:        i + 1,
			Name:      t.name,
			Weight:    t.weight,
			RuleType:  t.ruleType,
			IsActive:  true,
			CreatedAt: now,
		})
	}
	return rules
}

// fallbackIntent derives a minimal intent from the profile alone.
func fallbackIntent(profile models.RecipientProfile) models.GiftIntent {
	raw := make([]string, 0, len(profile.Interests))
	for _, interest := range profile.Interests {
		raw = append(raw, "interest:"+interest)
	}
	return models.GiftIntent{
		HardConstraints:  []models.Signal{},
		SoftPrefs:        models.ParseSignals(raw),
		TargetCategories: []string{"general"},
		BudgetStrategy:   models.StrategyBalanced,
	}
}

// buildDiagnostics reports which signals matched, which soft preferences
// went unmet, and whether the candidate pool was thin. The matched set is
// ordered by first appearance across the candidate list so equal inputs
// produce equal diagnostics.
func buildDiagnostics(candidates []models.CandidateVariant, intent models.GiftIntent, notes []string) *models.Diagnostics {
	seen := make(map[string]bool)
	matched := []string{}
	for _, c := range candidates {
		for _, signal := range c.MatchedSignals {
			if !seen[signal] {
				seen[signal] = true
				matched = append(matched, signal)
			}
		}
	}

	var unmet []string
	for _, pref := range intent.SoftPrefs {
		if !seen[pref.String()] {
			unmet = append(unmet, pref.String())
		}
	}
	sort.Strings(unmet)

	inventoryNotes := append([]string{}, notes...)
	if len(candidates) < minHealthySelection {
		inventoryNotes = append(inventoryNotes, "Limited product selection available")
	}
	if len(inventoryNotes) == 0 {
		inventoryNotes = nil
	}

	return &models.Diagnostics{
		MatchedSignals:   matched,
		UnmetConstraints: unmet,
		InventoryNotes:   inventoryNotes,
	}
}

// profileHash normalizes the stable profile fields and prompt into a cache
// key component.
func profileHash(profile models.RecipientProfile, prompt string) string {
	normalized := struct {
		Interests    []string `json:"interests"`
		Style        []string `json:"style"`
		Dislikes     []string `json:"dislikes"`
		Allergies    []string `json:"allergies"`
		Constraints  []string `json:"constraints"`
		Relationship string   `json:"relationship"`
		AgeRange     string   `json:"age_range"`
	}{
		Interests:    sortedCopy(profile.Interests),
		Style:        sortedCopy(profile.Style),
		Dislikes:     sortedCopy(profile.Dislikes),
		Allergies:    sortedCopy(profile.Allergies),
		Constraints:  sortedCopy(profile.Constraints),
		Relationship: profile.Relationship,
		AgeRange:     profile.AgeRange,
	}
	data, _ := json.Marshal(normalized)
	sum := sha256.Sum256(append(data, []byte(strings.ToLower(strings.TrimSpace(prompt)))...))
	return hex.EncodeToString(sum[:])
}

func intentHash(intent models.GiftIntent, budget float64) string {
	data, _ := json.Marshal(intent)
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%.2f", data, budget)))
	return hex.EncodeToString(sum[:])
}

func requestHash(req models.GiftFinderRequest) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"%s:%.2f:%d", profileHash(req.Profile, req.Prompt), req.Budget, req.MaxBundles,
	)))
	return hex.EncodeToString(sum[:])
}

func sortedCopy(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	return out
}
