package models

// CandidateVariant is a scored, budget-admissible product variant ready for
// bundle assembly. Candidates are derived fresh per request and never
// mutated after creation.
type CandidateVariant struct {
	Product        Product  `json:"product"`
	Variant        Variant  `json:"variant"`
	RelevanceScore float64  `json:"relevance_score"`
	Category       string   `json:"category"`
	PriceValue     float64  `json:"price_value"`
	MatchedSignals []string `json:"matched_signals"`
}

// BundleItem is one line of a gift bundle. Quantity is always 1.
type BundleItem struct {
	ProductID string   `json:"product_id"`
	VariantID string   `json:"variant_id"`
	Title     string   `json:"title"`
	ImageURL  string   `json:"image_url"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unit_price"`
	Tags      []string `json:"tags,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// PriceBlock summarizes a bundle's price against the request budget.
type PriceBlock struct {
	Subtotal float64 `json:"subtotal"`
	Total    float64 `json:"total"`
	// NearBudget is set whenever Total exceeds the budget (but stayed
	// within tolerance at assembly time).
	NearBudget bool `json:"near_budget,omitempty"`
}

// PartialBundle is an assembled, ranked bundle before LLM enrichment.
// It has no title or rationale yet.
type PartialBundle struct {
	ID             string       `json:"id"`
	Items          []BundleItem `json:"items"`
	Price          PriceBlock   `json:"price"`
	DiversityScore float64      `json:"diversity_score"`
	ThemeTags      []string     `json:"theme_tags,omitempty"`
}

// Enriched attaches a title and rationale, producing the final bundle.
// This is the only transition from PartialBundle to GiftBundle.
func (p PartialBundle) Enriched(title, rationale string) GiftBundle {
	return GiftBundle{PartialBundle: p, Title: title, Rationale: rationale}
}

// GiftBundle is a finalized, enriched bundle.
type GiftBundle struct {
	PartialBundle
	Title     string `json:"title"`
	Rationale string `json:"rationale"`
}

// VariantIDs returns the variant ids of all items, in item order.
func (p PartialBundle) VariantIDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.VariantID)
	}
	return ids
}

// Diagnostics explains how well the catalog covered the request.
type Diagnostics struct {
	MatchedSignals   []string `json:"matched_signals"`
	UnmetConstraints []string `json:"unmet_constraints,omitempty"`
	InventoryNotes   []string `json:"inventory_notes,omitempty"`
}

// GiftFinderRequest is the engine's input.
type GiftFinderRequest struct {
	Profile    RecipientProfile `json:"profile"`
	Prompt     string           `json:"prompt"`
	Budget     float64          `json:"budget"`
	MaxBundles int              `json:"max_bundles,omitempty"`
}

// GiftFinderResult is the engine's terminal output. It is structurally
// valid even when generation degrades to zero bundles.
type GiftFinderResult struct {
	Bundles     []GiftBundle `json:"bundles"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
	GeneratedAt string       `json:"generated_at"`
}
