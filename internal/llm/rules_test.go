package llm

import (
	"context"
	"testing"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

func TestRuleBasedClient_ExtractIntent(t *testing.T) {
	client := NewRuleBasedClient()
	profile := models.RecipientProfile{
		Relationship: "sister",
		Interests:    []string{"tea", "reading"},
		Style:        []string{"minimal"},
		Dislikes:     []string{"fragrance"},
		Allergies:    []string{"nuts"},
		Constraints:  []string{"no:leather"},
	}

	intent, err := client.ExtractIntent(context.Background(), profile, "Something cozy for her birthday", 75)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantHard := []models.Signal{
		{Kind: models.SignalExclusion, Tag: "fragrance"},
		{Kind: models.SignalAllergen, Tag: "nuts"},
		{Kind: models.SignalExclusion, Tag: "leather"},
	}
	if len(intent.HardConstraints) != len(wantHard) {
		t.Fatalf("expected %d hard constraints, got %v", len(wantHard), intent.HardConstraints)
	}
	for i, want := range wantHard {
		if intent.HardConstraints[i] != want {
			t.Errorf("hard constraint %d = %+v, want %+v", i, intent.HardConstraints[i], want)
		}
	}

	wantSoft := map[models.Signal]bool{
		{Kind: models.SignalInterest, Tag: "tea"}:     true,
		{Kind: models.SignalInterest, Tag: "reading"}: true,
		{Kind: models.SignalStyle, Tag: "minimal"}:    true,
		{Kind: models.SignalTheme, Tag: "cozy"}:       true,
		{Kind: models.SignalTheme, Tag: "birthday"}:   true,
	}
	for _, s := range intent.SoftPrefs {
		delete(wantSoft, s)
	}
	if len(wantSoft) != 0 {
		t.Errorf("missing soft prefs: %v (got %v)", wantSoft, intent.SoftPrefs)
	}

	if intent.BudgetStrategy != models.StrategyBalanced {
		t.Errorf("expected balanced strategy at budget 75, got %s", intent.BudgetStrategy)
	}
	if len(intent.TargetCategories) == 0 {
		t.Errorf("expected target categories for tea/reading/cozy inputs")
	}
}

func TestRuleBasedClient_BudgetStrategyThresholds(t *testing.T) {
	client := NewRuleBasedClient()
	cases := []struct {
		budget float64
		want   models.BudgetStrategy
	}{
		{10, models.StrategyStocking},
		{29.99, models.StrategyStocking},
		{30, models.StrategyBalanced},
		{100, models.StrategyBalanced},
		{100.01, models.StrategyHero},
		{500, models.StrategyHero},
	}
	for _, tc := range cases {
		intent, err := client.ExtractIntent(context.Background(), models.RecipientProfile{}, "a gift", tc.budget)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if intent.BudgetStrategy != tc.want {
			t.Errorf("budget %f: expected %s, got %s", tc.budget, tc.want, intent.BudgetStrategy)
		}
	}
}

func TestRuleBasedClient_ExtractIntent_Deterministic(t *testing.T) {
	client := NewRuleBasedClient()
	profile := models.RecipientProfile{Interests: []string{"tea"}}

	first, _ := client.ExtractIntent(context.Background(), profile, "cozy tea things", 60)
	for i := 0; i < 3; i++ {
		again, _ := client.ExtractIntent(context.Background(), profile, "cozy tea things", 60)
		if len(again.SoftPrefs) != len(first.SoftPrefs) {
			t.Fatalf("intent extraction not deterministic")
		}
		for j := range again.SoftPrefs {
			if again.SoftPrefs[j] != first.SoftPrefs[j] {
				t.Fatalf("soft pref order changed between runs")
			}
		}
	}
}

func TestRuleBasedClient_EnrichBundles(t *testing.T) {
	client := NewRuleBasedClient()

	teaCozy := models.PartialBundle{
		ID: "bundle_1",
		Items: []models.BundleItem{
			{Title: "Jasmine Tea Tin", Tags: []string{"interest:tea"}},
			{Title: "Wool Throw", Tags: []string{"theme:cozy"}},
		},
	}
	single := models.PartialBundle{
		ID:    "bundle_2",
		Items: []models.BundleItem{{Title: "Ceramic Vase"}},
	}
	plain := models.PartialBundle{
		ID: "bundle_3",
		Items: []models.BundleItem{
			{Title: "Puzzle"}, {Title: "Card Game"},
		},
	}

	enriched, err := client.EnrichBundles(context.Background(), []models.PartialBundle{teaCozy, single, plain}, models.RecipientProfile{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(enriched) != 3 {
		t.Fatalf("expected 3 enriched bundles, got %d", len(enriched))
	}

	if enriched[0].Title != "Cozy Tea Evening Kit" {
		t.Errorf("expected contextual tea+cozy title, got %q", enriched[0].Title)
	}
	if enriched[1].Title != "Premium Single Gift" {
		t.Errorf("expected single-item title, got %q", enriched[1].Title)
	}
	if enriched[2].Title != "Gift Bundle 3" {
		t.Errorf("expected placeholder title, got %q", enriched[2].Title)
	}

	for i, b := range enriched {
		if b.Rationale == "" {
			t.Errorf("bundle %d missing rationale", i)
		}
		if b.ID != []string{"bundle_1", "bundle_2", "bundle_3"}[i] {
			t.Errorf("enrichment reordered bundles: %s at %d", b.ID, i)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n[1,2]\n```", "[1,2]"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSummarizeProfile(t *testing.T) {
	got := summarizeProfile(models.RecipientProfile{
		Relationship: "friend",
		Interests:    []string{"tea"},
	})
	if got != "friend; interests: tea" {
		t.Errorf("unexpected summary: %q", got)
	}

	if got := summarizeProfile(models.RecipientProfile{}); got != "No specific profile details provided" {
		t.Errorf("unexpected empty-profile summary: %q", got)
	}
}
