package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

func TestBuildSearchQuery(t *testing.T) {
	intent := models.GiftIntent{
		HardConstraints: models.ParseSignals([]string{"no:fragrance", "allergen:no:nuts"}),
		SoftPrefs:       models.ParseSignals([]string{"interest:tea", "theme:cozy"}),
		TargetCategories: []string{
			"tea accessories", "mugs",
		},
		BudgetStrategy: models.StrategyBalanced,
	}

	query := BuildSearchQuery(intent, 75)

	for _, want := range []string{
		"(tag:'interest:tea' OR tag:'theme:cozy')",
		"(product_type:'tea accessories' OR product_type:'mugs')",
		"-tag:'fragrance'",
		"-tag:'allergen:nuts'",
		"available_for_sale:true",
		"variants.price:<=60.00",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
}

func TestBuildSearchQuery_PriceCeilingLeavesRoom(t *testing.T) {
	// At small budgets, budget-10 undercuts the 80% ceiling.
	query := BuildSearchQuery(models.GiftIntent{}, 20)
	if !strings.Contains(query, "variants.price:<=10.00") {
		t.Errorf("expected budget-10 ceiling at low budgets: %s", query)
	}

	// No ceiling clause at all when the budget leaves no room.
	query = BuildSearchQuery(models.GiftIntent{}, 10)
	if strings.Contains(query, "variants.price") {
		t.Errorf("expected no price clause at budget 10: %s", query)
	}
}

func TestBuildSearchQuery_EmptyIntent(t *testing.T) {
	query := BuildSearchQuery(models.GiftIntent{}, 100)
	if strings.Contains(query, "tag:") || strings.Contains(query, "product_type:") {
		t.Errorf("empty intent should produce only base filters: %s", query)
	}
	if !strings.Contains(query, "available_for_sale:true") {
		t.Errorf("missing availability filter: %s", query)
	}
}

func TestMemoryCatalog_ExcludesHardConstraints(t *testing.T) {
	catalog := NewMemoryCatalog()
	intent := models.GiftIntent{
		HardConstraints: models.ParseSignals([]string{"no:fragrance", "allergen:no:nuts", "no:leather"}),
		SoftPrefs:       models.ParseSignals([]string{"interest:tea"}),
		BudgetStrategy:  models.StrategyBalanced,
	}

	products, err := catalog.Search(context.Background(), intent, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) == 0 {
		t.Fatalf("expected products from fixture catalog")
	}
	for _, p := range products {
		if p.HasTag("fragrance") {
			t.Errorf("excluded tag leaked: %s", p.Title)
		}
		if p.HasTag("allergen:nuts") {
			t.Errorf("allergen leaked: %s", p.Title)
		}
		if p.HasTag("leather") {
			t.Errorf("excluded leather item leaked: %s", p.Title)
		}
	}
}

func TestMemoryCatalog_MatchingProductsFirst(t *testing.T) {
	catalog := NewMemoryCatalog()
	intent := models.GiftIntent{
		SoftPrefs:      models.ParseSignals([]string{"interest:tea"}),
		BudgetStrategy: models.StrategyBalanced,
	}

	products, err := catalog.Search(context.Background(), intent, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seenGeneric := false
	for _, p := range products {
		if p.HasTag("interest:tea") {
			if seenGeneric {
				t.Fatalf("tea product %s appeared after generic products", p.Title)
			}
		} else {
			seenGeneric = true
		}
	}
}

func TestMemoryCatalog_PriceCeiling(t *testing.T) {
	catalog := NewMemoryCatalog()

	products, err := catalog.Search(context.Background(), models.GiftIntent{}, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Ceiling is min(30*0.8, 30-10) = 20.
	for _, p := range products {
		if cheapestPrice(p) > 20 {
			t.Errorf("product over ceiling returned: %s at %f", p.Title, cheapestPrice(p))
		}
	}
}

func TestMemoryCatalog_CustomProducts(t *testing.T) {
	custom := models.Product{
		ID:    "p1",
		Title: "Custom Item",
		Variants: []models.Variant{
			{ID: "v1", Price: models.Price{Amount: "10.00"}, AvailableForSale: true},
		},
	}
	catalog := NewMemoryCatalog(custom)

	products, err := catalog.Search(context.Background(), models.GiftIntent{}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("expected only the custom product, got %v", products)
	}
}
