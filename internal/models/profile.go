package models

import "time"

// RecipientProfile describes the person a gift is being chosen for.
// Every field is optional; an absent field means "unconstrained".
// A profile is never mutated once handed to the engine.
type RecipientProfile struct {
	Name               string   `json:"name,omitempty"`
	Relationship       string   `json:"relationship,omitempty"`
	AgeRange           string   `json:"age_range,omitempty"`
	GenderPresentation string   `json:"gender_presentation,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	Style              []string `json:"style,omitempty"`
	Dislikes           []string `json:"dislikes,omitempty"`
	Allergies          []string `json:"allergies,omitempty"`
	Constraints        []string `json:"constraints,omitempty"`
	LocationClimate    string   `json:"location_climate,omitempty"`
	Notes              string   `json:"notes,omitempty"`
}

// StoredProfile is a recipient profile saved for reuse.
type StoredProfile struct {
	ID        int              `json:"id"`
	Label     string           `json:"label"`
	Profile   RecipientProfile `json:"profile"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// SaveProfileRequest is the request body for creating or updating a profile.
type SaveProfileRequest struct {
	Label   string           `json:"label"`
	Profile RecipientProfile `json:"profile"`
}
