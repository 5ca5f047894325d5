package catalog

import (
	"context"
	"strings"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

// MemoryCatalog serves products from an in-memory fixture set. It backs
// development mode when no storefront is configured and doubles as a test
// catalog. Search applies the same admissibility rules a storefront query
// would: hard-constraint exclusion, availability, and a per-item price
// ceiling.
type MemoryCatalog struct {
	products []models.Product
}

// NewMemoryCatalog creates a catalog over the given products. With no
// products it serves the built-in fixture set.
func NewMemoryCatalog(products ...models.Product) *MemoryCatalog {
	if len(products) == 0 {
		products = fixtureProducts()
	}
	return &MemoryCatalog{products: products}
}

// Search filters the fixture set by the intent's hard constraints and the
// budget ceiling. Products matching a soft preference or target category
// are returned ahead of generic ones, mirroring search relevance order.
func (m *MemoryCatalog) Search(_ context.Context, intent models.GiftIntent, budget float64) ([]models.Product, error) {
	maxItemPrice := budget * 0.8
	if budget-10 < maxItemPrice {
		maxItemPrice = budget - 10
	}

	var matching, generic []models.Product
	for _, product := range m.products {
		if excluded(product, intent.HardConstraints) {
			continue
		}
		if maxItemPrice > 0 && cheapestPrice(product) > maxItemPrice {
			continue
		}
		if matchesIntent(product, intent) {
			matching = append(matching, product)
		} else {
			generic = append(generic, product)
		}
	}

	results := append(matching, generic...)
	if len(results) > MaxCandidates {
		results = results[:MaxCandidates]
	}
	return results, nil
}

func excluded(product models.Product, constraints []models.Signal) bool {
	for _, c := range constraints {
		switch c.Kind {
		case models.SignalExclusion:
			if product.HasTag(c.Tag) {
				return true
			}
		case models.SignalAllergen:
			if product.HasTag("allergen:" + c.Tag) {
				return true
			}
		}
	}
	return false
}

func cheapestPrice(product models.Product) float64 {
	cheapest := 0.0
	for i, v := range product.Variants {
		price := v.Price.Value()
		if i == 0 || price < cheapest {
			cheapest = price
		}
	}
	return cheapest
}

func matchesIntent(product models.Product, intent models.GiftIntent) bool {
	for _, pref := range intent.SoftPrefs {
		if product.HasTag(pref.String()) {
			return true
		}
	}
	lowerType := strings.ToLower(product.ProductType)
	lowerTitle := strings.ToLower(product.Title)
	for _, cat := range intent.TargetCategories {
		c := strings.ToLower(cat)
		if c != "" && (strings.Contains(lowerType, c) || strings.Contains(lowerTitle, c)) {
			return true
		}
	}
	return false
}

func fixture(id, title, productType string, tags []string, price string) models.Product {
	return models.Product{
		ID:          "gid://shopify/Product/" + id,
		Title:       title,
		ProductType: productType,
		Tags:        tags,
		Variants: []models.Variant{
			{
				ID:               "gid://shopify/ProductVariant/" + id,
				Title:            "Default Title",
				Price:            models.Price{Amount: price, CurrencyCode: "USD"},
				AvailableForSale: true,
			},
		},
	}
}

func fixtureProducts() []models.Product {
	return []models.Product{
		fixture("1001", "Artisan Jasmine Tea Tin", "Tea Accessories", []string{"interest:tea", "theme:cozy"}, "18.00"),
		fixture("1002", "Ceramic Tea Mug", "Mugs", []string{"interest:tea", "style:minimal"}, "22.00"),
		fixture("1003", "Cast Iron Teapot", "Tea Accessories", []string{"interest:tea"}, "45.00"),
		fixture("1004", "Chunky Knit Throw Blanket", "Home Textiles", []string{"theme:cozy", "home"}, "38.00"),
		fixture("1005", "Soy Wax Candle", "Decor", []string{"theme:cozy", "scent:lavender"}, "14.00"),
		fixture("1006", "Linen Reading Pillow", "Home Textiles", []string{"interest:reading", "theme:cozy", "home"}, "32.00"),
		fixture("1007", "Leather Bookmark Set", "Stationery", []string{"interest:reading", "leather"}, "12.00"),
		fixture("1008", "Hardcover Poetry Anthology", "Books", []string{"interest:reading"}, "26.00"),
		fixture("1009", "Minimalist Desk Organizer", "Stationery", []string{"style:minimal"}, "28.00"),
		fixture("1010", "Honey & Almond Biscotti Box", "Pantry", []string{"interest:tea", "allergen:nuts"}, "16.00"),
		fixture("1011", "Wool House Socks", "Apparel", []string{"theme:cozy"}, "19.00"),
		fixture("1012", "Botanical Print Set", "Decor", []string{"style:minimal", "home"}, "24.00"),
		fixture("1013", "Premium Matcha Starter Kit", "Tea Accessories", []string{"interest:tea", "style:minimal"}, "58.00"),
		fixture("1014", "Scented Drawer Sachets", "Decor", []string{"scent:rose", "fragrance"}, "9.00"),
		fixture("1015", "Pocket Puzzle Book", "Books", []string{"interest:reading"}, "8.00"),
		fixture("1016", "Espresso Tasting Set", "Coffee", []string{"interest:coffee"}, "42.00"),
		fixture("1017", "Weighted Eye Pillow", "Wellness", []string{"theme:cozy"}, "21.00"),
		fixture("1018", "Marble Coaster Set", "Decor", []string{"style:minimal", "home"}, "30.00"),
		fixture("1019", "Deluxe Tea Sampler Chest", "Tea Accessories", []string{"interest:tea", "theme:cozy"}, "72.00"),
		fixture("1020", "Travel Journal", "Stationery", []string{"interest:reading", "interest:travel"}, "17.00"),
	}
}
