package models

// BudgetStrategy selects which packing strategy dominates bundle assembly.
type BudgetStrategy string

const (
	StrategyHero     BudgetStrategy = "hero"
	StrategyBalanced BudgetStrategy = "balanced"
	StrategyStocking BudgetStrategy = "stocking"
)

// Valid reports whether the strategy is one of the known values.
func (b BudgetStrategy) Valid() bool {
	switch b {
	case StrategyHero, StrategyBalanced, StrategyStocking:
		return true
	}
	return false
}

// GiftIntent is the normalized signal set derived from a recipient profile,
// a free-text prompt and a budget. Produced once per request and cached.
type GiftIntent struct {
	// HardConstraints exclude items outright; exclusion is applied by the
	// catalog search, never by the scorer.
	HardConstraints []Signal `json:"hard_constraints"`
	// SoftPrefs only influence scoring.
	SoftPrefs []Signal `json:"soft_prefs"`
	// TargetCategories are free-text hints matched against product type/title.
	TargetCategories []string `json:"target_categories"`
	BudgetStrategy   BudgetStrategy `json:"budget_strategy"`
}
