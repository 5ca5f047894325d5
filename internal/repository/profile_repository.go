package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

// ErrProfileNotFound is returned when no stored profile matches.
var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Save creates a stored profile, or replaces the one with the same label.
func (r *ProfileRepository) Save(label string, profile models.RecipientProfile) (*models.StoredProfile, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}

	var stored models.StoredProfile
	var raw []byte
	err = r.db.QueryRow(`
		INSERT INTO recipient_profiles (label, profile, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (label)
		DO UPDATE SET profile = EXCLUDED.profile, updated_at = NOW()
		RETURNING id, label, profile, created_at, updated_at
	`, label, payload).Scan(&stored.ID, &stored.Label, &raw, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	if err := json.Unmarshal(raw, &stored.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal stored profile: %w", err)
	}
	return &stored, nil
}

// Update replaces the label and profile of an existing stored profile.
func (r *ProfileRepository) Update(id int, label string, profile models.RecipientProfile) (*models.StoredProfile, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}

	var stored models.StoredProfile
	var raw []byte
	err = r.db.QueryRow(`
		UPDATE recipient_profiles
		SET label = $2, profile = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, label, profile, created_at, updated_at
	`, id, label, payload).Scan(&stored.ID, &stored.Label, &raw, &stored.CreatedAt, &stored.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := json.Unmarshal(raw, &stored.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal stored profile: %w", err)
	}
	return &stored, nil
}

// GetByID retrieves one stored profile.
func (r *ProfileRepository) GetByID(id int) (*models.StoredProfile, error) {
	var stored models.StoredProfile
	var raw []byte
	err := r.db.QueryRow(`
		SELECT id, label, profile, created_at, updated_at
		FROM recipient_profiles
		WHERE id = $1
	`, id).Scan(&stored.ID, &stored.Label, &raw, &stored.CreatedAt, &stored.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := json.Unmarshal(raw, &stored.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal stored profile: %w", err)
	}
	return &stored, nil
}

// List returns all stored profiles, most recently updated first.
func (r *ProfileRepository) List() ([]models.StoredProfile, error) {
	rows, err := r.db.Query(`
		SELECT id, label, profile, created_at, updated_at
		FROM recipient_profiles
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.StoredProfile
	for rows.Next() {
		var stored models.StoredProfile
		var raw []byte
		if err := rows.Scan(&stored.ID, &stored.Label, &raw, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		if err := json.Unmarshal(raw, &stored.Profile); err != nil {
			return nil, fmt.Errorf("unmarshal stored profile: %w", err)
		}
		profiles = append(profiles, stored)
	}
	return profiles, rows.Err()
}

// Delete removes a stored profile.
func (r *ProfileRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM recipient_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
