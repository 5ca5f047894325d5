package models

import "strconv"

const placeholderImageURL = "https://via.placeholder.com/300x300?text=No+Image"

// Price is a catalog money amount in the storefront wire shape.
type Price struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// Value parses the amount; malformed amounts come back as 0.
func (p Price) Value() float64 {
	v, err := strconv.ParseFloat(p.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}

// Variant is a purchasable product variant.
type Variant struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Price            Price  `json:"price"`
	AvailableForSale bool   `json:"available_for_sale"`
	ImageURL         string `json:"image_url,omitempty"`
}

// Product is a raw catalog product as returned by the catalog collaborator.
type Product struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	ProductType      string    `json:"product_type"`
	Tags             []string  `json:"tags"`
	FeaturedImageURL string    `json:"featured_image_url,omitempty"`
	Variants         []Variant `json:"variants"`
}

// HasTag reports whether the product carries the exact tag.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// BestImageURL picks the variant image, then the product image, then a
// placeholder.
func (p Product) BestImageURL(v Variant) string {
	if v.ImageURL != "" {
		return v.ImageURL
	}
	if p.FeaturedImageURL != "" {
		return p.FeaturedImageURL
	}
	return placeholderImageURL
}
