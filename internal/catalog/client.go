// Package catalog retrieves candidate products for gift bundle generation,
// either from a Shopify storefront or an in-memory fixture catalog.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

// MaxCandidates bounds how many products a single search returns.
const MaxCandidates = 80

// Searcher finds candidate products for a gift intent within a budget.
// Hard-constraint exclusion is the searcher's responsibility; callers
// downstream only see admissible products.
type Searcher interface {
	Search(ctx context.Context, intent models.GiftIntent, budget float64) ([]models.Product, error)
}

const productsQuery = `
  query GiftFinderProducts($query: String!, $first: Int!) {
    products(first: $first, query: $query) {
      nodes {
        id
        title
        productType
        tags
        variants(first: 5) {
          nodes {
            id
            price {
              amount
              currencyCode
            }
            availableForSale
            title
            image {
              url
            }
          }
        }
        featuredImage {
          url
        }
      }
    }
  }
`

// StorefrontClient queries the Shopify Storefront GraphQL API.
type StorefrontClient struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
}

// NewStorefrontClient creates a client for the given shop.
func NewStorefrontClient(shopDomain, accessToken string) *StorefrontClient {
	return &StorefrontClient{
		shopDomain:  shopDomain,
		accessToken: accessToken,
		apiVersion:  "2024-01",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *StorefrontClient) endpoint() string {
	return fmt.Sprintf("https://%s/api/%s/graphql.json", c.shopDomain, c.apiVersion)
}

// graphql wire shapes; the storefront nests variants and images one level
// deeper than the internal model.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type imageNode struct {
	URL string `json:"url"`
}

type variantNode struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Price            models.Price `json:"price"`
	AvailableForSale bool         `json:"availableForSale"`
	Image            *imageNode   `json:"image"`
}

type productNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ProductType string   `json:"productType"`
	Tags        []string `json:"tags"`
	Variants    struct {
		Nodes []variantNode `json:"nodes"`
	} `json:"variants"`
	FeaturedImage *imageNode `json:"featuredImage"`
}

type graphqlResponse struct {
	Data struct {
		Products struct {
			Nodes []productNode `json:"nodes"`
		} `json:"products"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Search builds a storefront search query from the intent and returns the
// matching products mapped into the internal model.
func (c *StorefrontClient) Search(ctx context.Context, intent models.GiftIntent, budget float64) ([]models.Product, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: productsQuery,
		Variables: map[string]any{
			"query": BuildSearchQuery(intent, budget),
			"first": MaxCandidates,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call storefront API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storefront API returned status %d", resp.StatusCode)
	}

	var gql graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gql); err != nil {
		return nil, fmt.Errorf("failed to decode storefront response: %w", err)
	}
	if len(gql.Errors) > 0 {
		return nil, fmt.Errorf("storefront graphql error: %s", gql.Errors[0].Message)
	}

	products := make([]models.Product, 0, len(gql.Data.Products.Nodes))
	for _, node := range gql.Data.Products.Nodes {
		products = append(products, mapProduct(node))
	}
	return products, nil
}

func mapProduct(node productNode) models.Product {
	product := models.Product{
		ID:          node.ID,
		Title:       node.Title,
		ProductType: node.ProductType,
		Tags:        node.Tags,
	}
	if node.FeaturedImage != nil {
		product.FeaturedImageURL = node.FeaturedImage.URL
	}
	for _, v := range node.Variants.Nodes {
		variant := models.Variant{
			ID:               v.ID,
			Title:            v.Title,
			Price:            v.Price,
			AvailableForSale: v.AvailableForSale,
		}
		if v.Image != nil {
			variant.ImageURL = v.Image.URL
		}
		product.Variants = append(product.Variants, variant)
	}
	return product
}

// BuildSearchQuery renders the intent into the storefront search syntax:
// soft prefs as tag ORs, categories as product_type ORs, exclusions as
// negated tags, plus availability and a per-item price ceiling that leaves
// room for other bundle items.
func BuildSearchQuery(intent models.GiftIntent, budget float64) string {
	var parts []string

	if len(intent.SoftPrefs) > 0 {
		prefs := make([]string, 0, len(intent.SoftPrefs))
		for _, pref := range intent.SoftPrefs {
			prefs = append(prefs, fmt.Sprintf("tag:'%s'", pref.String()))
		}
		parts = append(parts, "("+strings.Join(prefs, " OR ")+")")
	}

	if len(intent.TargetCategories) > 0 {
		categories := make([]string, 0, len(intent.TargetCategories))
		for _, cat := range intent.TargetCategories {
			categories = append(categories, fmt.Sprintf("product_type:'%s'", cat))
		}
		parts = append(parts, "("+strings.Join(categories, " OR ")+")")
	}

	for _, constraint := range intent.HardConstraints {
		switch constraint.Kind {
		case models.SignalExclusion:
			parts = append(parts, fmt.Sprintf("-tag:'%s'", constraint.Tag))
		case models.SignalAllergen:
			parts = append(parts, fmt.Sprintf("-tag:'allergen:%s'", constraint.Tag))
		}
	}

	parts = append(parts, "available_for_sale:true")

	maxItemPrice := budget * 0.8
	if budget-10 < maxItemPrice {
		maxItemPrice = budget - 10
	}
	if maxItemPrice > 0 {
		parts = append(parts, fmt.Sprintf("variants.price:<=%.2f", maxItemPrice))
	}

	return strings.Join(parts, " ")
}
