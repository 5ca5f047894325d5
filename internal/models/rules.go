package models

import "time"

// ScoringRule is a weight row for one scoring factor. Rules live in
// postgres so weights can be tuned without a redeploy; built-in defaults
// apply when no database is attached.
type ScoringRule struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"`
	RuleType  string    `json:"rule_type"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// BundleSnapshot records one generated bundle for a profile hash.
type BundleSnapshot struct {
	ID          int       `json:"id"`
	ProfileHash string    `json:"profile_hash"`
	BundleID    string    `json:"bundle_id"`
	Total       float64   `json:"total"`
	Rank        int       `json:"rank"`
	GeneratedAt time.Time `json:"generated_at"`
}
