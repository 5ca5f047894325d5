package repository

import (
	"database/sql"
	"fmt"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

type GiftFinderRepository struct {
	db *sql.DB
}

func NewGiftFinderRepository(db *sql.DB) *GiftFinderRepository {
	return &GiftFinderRepository{db: db}
}

// GetActiveRules returns all active scoring rules.
func (r *GiftFinderRepository) GetActiveRules() ([]models.ScoringRule, error) {
	rows, err := r.db.Query(`
		SELECT id, name, weight, rule_type, is_active, created_at
		FROM scoring_rules
		WHERE is_active = TRUE
		ORDER BY rule_type
	`)
	if err != nil {
		return nil, fmt.Errorf("query active rules: %w", err)
	}
	defer rows.Close()

	var rules []models.ScoringRule
	for rows.Next() {
		var rule models.ScoringRule
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Weight,
			&rule.RuleType, &rule.IsActive, &rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// UpsertSnapshot stores or updates a generated bundle snapshot.
func (r *GiftFinderRepository) UpsertSnapshot(profileHash, bundleID string, total float64, rank int) error {
	_, err := r.db.Exec(`
		INSERT INTO bundle_snapshots (profile_hash, bundle_id, total, rank, generated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (profile_hash, bundle_id)
		DO UPDATE SET total = EXCLUDED.total, rank = EXCLUDED.rank, generated_at = NOW()
	`, profileHash, bundleID, total, rank)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// GetSnapshots retrieves the most recent bundle snapshots for a profile hash.
func (r *GiftFinderRepository) GetSnapshots(profileHash string, limit int) ([]models.BundleSnapshot, error) {
	rows, err := r.db.Query(`
		SELECT id, profile_hash, bundle_id, total, rank, generated_at
		FROM bundle_snapshots
		WHERE profile_hash = $1
		ORDER BY rank ASC
		LIMIT $2
	`, profileHash, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.BundleSnapshot
	for rows.Next() {
		var s models.BundleSnapshot
		if err := rows.Scan(&s.ID, &s.ProfileHash, &s.BundleID, &s.Total, &s.Rank, &s.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// ClearSnapshots removes all snapshots for a profile hash (before regeneration).
func (r *GiftFinderRepository) ClearSnapshots(profileHash string) error {
	_, err := r.db.Exec(`DELETE FROM bundle_snapshots WHERE profile_hash = $1`, profileHash)
	if err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}
