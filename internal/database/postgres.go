package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/config"
)

func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS scoring_rules (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			weight DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			rule_type VARCHAR(50) NOT NULL,
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS recipient_profiles (
			id SERIAL PRIMARY KEY,
			label VARCHAR(100) NOT NULL UNIQUE,
			profile JSONB NOT NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS bundle_snapshots (
			id SERIAL PRIMARY KEY,
			profile_hash VARCHAR(64) NOT NULL,
			bundle_id VARCHAR(64) NOT NULL,
			total DOUBLE PRECISION NOT NULL,
			rank INTEGER NOT NULL,
			generated_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(profile_hash, bundle_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_profile_hash ON bundle_snapshots(profile_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_generated_at ON bundle_snapshots(generated_at DESC)`,
		// Seed default rules if none exist
		`INSERT INTO scoring_rules (name, weight, rule_type)
		 SELECT 'Bundle Relevance', 0.45, 'relevance'
		 WHERE NOT EXISTS (SELECT 1 FROM scoring_rules WHERE rule_type = 'relevance')`,
		`INSERT INTO scoring_rules (name, weight, rule_type)
		 SELECT 'Budget Fit', 0.25, 'budget_fit'
		 WHERE NOT EXISTS (SELECT 1 FROM scoring_rules WHERE rule_type = 'budget_fit')`,
		`INSERT INTO scoring_rules (name, weight, rule_type)
		 SELECT 'Category Diversity', 0.15, 'diversity'
		 WHERE NOT EXISTS (SELECT 1 FROM scoring_rules WHERE rule_type = 'diversity')`,
		`INSERT INTO scoring_rules (name, weight, rule_type)
		 SELECT 'Novelty Bonus', 0.10, 'novelty'
		 WHERE NOT EXISTS (SELECT 1 FROM scoring_rules WHERE rule_type = 'novelty')`,
		`INSERT INTO scoring_rules (name, weight, rule_type)
		 SELECT 'Inventory Health', 0.05, 'inventory_health'
		 WHERE NOT EXISTS (SELECT 1 FROM scoring_rules WHERE rule_type = 'inventory_health')`,
		`INSERT INTO scoring_rules (name, weight, rule_type)
		 SELECT 'Soft Preference Match', 0.3, 'softpref_match'
		 WHERE NOT EXISTS (SELECT 1 FROM scoring_rules WHERE rule_type = 'softpref_match')`,
		`INSERT INTO scoring_rules (name, weight, rule_type)
		 SELECT 'Category Match', 0.2, 'category_match'
		 WHERE NOT EXISTS (SELECT 1 FROM scoring_rules WHERE rule_type = 'category_match')`,
		`INSERT INTO scoring_rules (name, weight, rule_type)
		 SELECT 'Price Band Fit', 0.1, 'price_band'
		 WHERE NOT EXISTS (SELECT 1 FROM scoring_rules WHERE rule_type = 'price_band')`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
