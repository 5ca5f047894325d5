package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/catalog"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/llm"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

// countingLLM wraps the rule-based client and counts calls; either call can
// be forced to fail.
type countingLLM struct {
	inner        *llm.RuleBasedClient
	extractCalls int
	enrichCalls  int
	extractErr   error
	enrichErr    error
}

func (c *countingLLM) ExtractIntent(ctx context.Context, profile models.RecipientProfile, prompt string, budget float64) (models.GiftIntent, error) {
	c.extractCalls++
	if c.extractErr != nil {
		return models.GiftIntent{}, c.extractErr
	}
	return c.inner.ExtractIntent(ctx, profile, prompt, budget)
}

func (c *countingLLM) EnrichBundles(ctx context.Context, bundles []models.PartialBundle, profile models.RecipientProfile, prompt string) ([]models.GiftBundle, error) {
	c.enrichCalls++
	if c.enrichErr != nil {
		return nil, c.enrichErr
	}
	return c.inner.EnrichBundles(ctx, bundles, profile, prompt)
}

type failingCatalog struct{}

func (failingCatalog) Search(context.Context, models.GiftIntent, float64) ([]models.Product, error) {
	return nil, errors.New("catalog unavailable")
}

func newCountingLLM() *countingLLM {
	return &countingLLM{inner: llm.NewRuleBasedClient()}
}

func testRequest() models.GiftFinderRequest {
	return models.GiftFinderRequest{
		Profile: models.RecipientProfile{
			Relationship: "sister",
			Interests:    []string{"tea", "reading"},
			Dislikes:     []string{"fragrance"},
		},
		Prompt: "Something cozy for a tea lover",
		Budget: 75,
	}
}

func TestGenerateBundles_RejectsInvalidBudget(t *testing.T) {
	svc := NewGiftFinderService(newCountingLLM(), catalog.NewMemoryCatalog(), nil, nil, 100, 100)

	for _, budget := range []float64{0, -5, 10000, 50000} {
		req := testRequest()
		req.Budget = budget
		if _, err := svc.GenerateBundles(context.Background(), req); err == nil {
			t.Errorf("expected error for budget %f", budget)
		}
	}
}

func TestGenerateBundles_HappyPath(t *testing.T) {
	fake := newCountingLLM()
	svc := NewGiftFinderService(fake, catalog.NewMemoryCatalog(), nil, nil, 100, 100)

	result, err := svc.GenerateBundles(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Bundles) == 0 {
		t.Fatalf("expected bundles for well-stocked catalog")
	}
	if result.GeneratedAt == "" {
		t.Errorf("missing generated_at timestamp")
	}
	if result.Diagnostics == nil {
		t.Fatalf("missing diagnostics")
	}

	for _, bundle := range result.Bundles {
		if bundle.Title == "" || bundle.Rationale == "" {
			t.Errorf("bundle %s missing enrichment", bundle.ID)
		}
		if len(bundle.Items) == 0 {
			t.Errorf("bundle %s has no items", bundle.ID)
		}
		if bundle.Price.Total > 75*1.1 {
			t.Errorf("bundle %s over budget tolerance: %f", bundle.ID, bundle.Price.Total)
		}
		for _, item := range bundle.Items {
			if strings.Contains(strings.Join(item.Tags, ","), "fragrance") {
				t.Errorf("excluded item reached bundle: %s", item.Title)
			}
		}
	}
}

func TestGenerateBundles_IntentMemoization(t *testing.T) {
	fake := newCountingLLM()
	svc := NewGiftFinderService(fake, catalog.NewMemoryCatalog(), nil, nil, 100, 100)

	if _, err := svc.GenerateBundles(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GenerateBundles(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.extractCalls != 1 {
		t.Errorf("expected 1 intent extraction across identical requests, got %d", fake.extractCalls)
	}
}

func TestGenerateBundles_FallbackOnIntentFailure(t *testing.T) {
	fake := newCountingLLM()
	fake.extractErr = errors.New("model unavailable")
	svc := NewGiftFinderService(fake, catalog.NewMemoryCatalog(), nil, nil, 100, 100)

	result, err := svc.GenerateBundles(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("fallback should not surface an error: %v", err)
	}
	if len(result.Bundles) == 0 {
		t.Fatalf("expected fallback bundles")
	}
	if len(result.Bundles) > fallbackMaxBundles {
		t.Errorf("fallback produced %d bundles, cap is %d", len(result.Bundles), fallbackMaxBundles)
	}
	for _, bundle := range result.Bundles {
		if !strings.HasPrefix(bundle.Title, "Gift Bundle") {
			t.Errorf("expected placeholder title in fallback, got %q", bundle.Title)
		}
	}

	foundNote := false
	for _, note := range result.Diagnostics.InventoryNotes {
		if strings.Contains(note, "simplified search") {
			foundNote = true
		}
	}
	if !foundNote {
		t.Errorf("missing simplified-search note: %v", result.Diagnostics.InventoryNotes)
	}
}

func TestGenerateBundles_EmptyResultOnDoubleFailure(t *testing.T) {
	fake := newCountingLLM()
	fake.extractErr = errors.New("model unavailable")
	svc := NewGiftFinderService(fake, failingCatalog{}, nil, nil, 100, 100)

	result, err := svc.GenerateBundles(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("double failure should degrade, not error: %v", err)
	}
	if len(result.Bundles) != 0 {
		t.Fatalf("expected empty bundles, got %d", len(result.Bundles))
	}
	if result.Diagnostics == nil {
		t.Fatalf("expected diagnostics on degraded result")
	}
	joined := strings.Join(result.Diagnostics.UnmetConstraints, " ")
	if !strings.Contains(joined, "Unable to generate bundles") {
		t.Errorf("missing failure guidance: %v", result.Diagnostics.UnmetConstraints)
	}
}

func TestGenerateBundles_EnrichmentFailureUsesPlaceholders(t *testing.T) {
	fake := newCountingLLM()
	fake.enrichErr = errors.New("model unavailable")
	svc := NewGiftFinderService(fake, catalog.NewMemoryCatalog(), nil, nil, 100, 100)

	result, err := svc.GenerateBundles(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Bundles) == 0 {
		t.Fatalf("enrichment failure should not drop bundles")
	}
	for _, bundle := range result.Bundles {
		if bundle.Title == "" || bundle.Rationale == "" {
			t.Errorf("bundle %s missing placeholder enrichment", bundle.ID)
		}
	}
}

func TestGenerateBundles_ResultCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	fake := newCountingLLM()
	svc := NewGiftFinderService(fake, catalog.NewMemoryCatalog(), nil, rdb, 100, 100)

	first, err := svc.GenerateBundles(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GenerateBundles(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second request is served from redis before any pipeline work runs.
	if fake.enrichCalls != 1 {
		t.Errorf("expected 1 enrichment call with warm cache, got %d", fake.enrichCalls)
	}
	if first.GeneratedAt != second.GeneratedAt {
		t.Errorf("cached result should be byte-identical")
	}

	// Expired cache entries trigger regeneration.
	mr.FastForward(resultCacheTTL + time.Second)
	if _, err := svc.GenerateBundles(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.enrichCalls != 2 {
		t.Errorf("expected regeneration after TTL, got %d enrichment calls", fake.enrichCalls)
	}
}

func TestGenerateBundles_Deterministic(t *testing.T) {
	// No redis: every call runs the full pipeline; output must not vary.
	fake := newCountingLLM()
	svc := NewGiftFinderService(fake, catalog.NewMemoryCatalog(), nil, nil, 100, 100)

	first, err := svc.GenerateBundles(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := svc.GenerateBundles(context.Background(), testRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again.Bundles) != len(first.Bundles) {
			t.Fatalf("bundle count changed between runs")
		}
		for j := range again.Bundles {
			if again.Bundles[j].ID != first.Bundles[j].ID {
				t.Fatalf("bundle order or identity changed between runs")
			}
		}
	}
}

func TestGetRules_DefaultsWithoutDatabase(t *testing.T) {
	svc := NewGiftFinderService(newCountingLLM(), catalog.NewMemoryCatalog(), nil, nil, 100, 100)

	rules, err := svc.GetRules(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 8 {
		t.Fatalf("expected 8 default rules, got %d", len(rules))
	}
	var total float64
	for _, rule := range rules {
		if !rule.IsActive {
			t.Errorf("default rule %s should be active", rule.RuleType)
		}
		total += rule.Weight
	}
	// Ranking weights sum to 1.0, candidate weights add 0.6.
	if diff := total - 1.6; diff > 0.001 || diff < -0.001 {
		t.Errorf("unexpected default weight total: %f", total)
	}
}

func TestBuildDiagnostics(t *testing.T) {
	intent := models.GiftIntent{
		SoftPrefs: models.ParseSignals([]string{"interest:tea", "interest:hiking"}),
	}
	candidates := []models.CandidateVariant{
		{MatchedSignals: []string{"interest:tea"}},
		{MatchedSignals: []string{"interest:tea", "category_match"}},
	}

	d := buildDiagnostics(candidates, intent, nil)
	if len(d.MatchedSignals) != 2 {
		t.Fatalf("expected deduplicated matched signals, got %v", d.MatchedSignals)
	}
	if d.MatchedSignals[0] != "interest:tea" || d.MatchedSignals[1] != "category_match" {
		t.Errorf("matched signals not in first-appearance order: %v", d.MatchedSignals)
	}
	if len(d.UnmetConstraints) != 1 || d.UnmetConstraints[0] != "interest:hiking" {
		t.Errorf("unexpected unmet constraints: %v", d.UnmetConstraints)
	}
	if len(d.InventoryNotes) != 1 || d.InventoryNotes[0] != "Limited product selection available" {
		t.Errorf("expected thin-selection note for %d candidates: %v", len(candidates), d.InventoryNotes)
	}
}

func TestProfileHash_Normalization(t *testing.T) {
	a := models.RecipientProfile{Interests: []string{"tea", "reading"}}
	b := models.RecipientProfile{Interests: []string{"reading", "tea"}}

	if profileHash(a, "Cozy gift") != profileHash(b, "  cozy gift  ") {
		t.Errorf("hash should normalize interest order and prompt case/space")
	}
	if profileHash(a, "cozy gift") == profileHash(a, "birthday gift") {
		t.Errorf("different prompts must hash differently")
	}
}
