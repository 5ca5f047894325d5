package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
)

const intentSystemPrompt = `You extract normalized gift-buying signals from a recipient profile and a short prompt.
Return strict JSON GiftIntent with hardConstraints, softPrefs, targetCategories, budgetStrategy.
Do not invent facts; infer conservatively from provided inputs.

Rules:
- hardConstraints: "no:" prefix for dislikes, "allergen:no:" for allergies, exact constraints from profile
- softPrefs: "style:" for style preferences, "interest:" for interests, "theme:" for themes
- targetCategories: derive from interests and prompt nouns (mugs, blankets, books, etc.)
- budgetStrategy: "hero" if budget suggests one standout item, "balanced" for multiple mid-range items, "stocking" for many small items

Return only valid JSON, no explanations.`

const enrichmentSystemPrompt = `You generate concise titles and rationales for gift bundles. Do not change items or prices.
Create titles that are 3-5 words, catchy and descriptive.
Write rationales that are 1-3 sentences tying the bundle to the recipient profile and gift prompt.
Return a JSON array with one {"title", "rationale"} object per bundle, in order.`

func buildIntentUserPrompt(profile models.RecipientProfile, prompt string, budget float64) string {
	profileJSON, _ := json.MarshalIndent(profile, "", "  ")
	return fmt.Sprintf("PROFILE:\n%s\n\nPROMPT:\n%q\n\nBUDGET: %.2f\n\nProfile Summary: %s\n\nExtract GiftIntent JSON:",
		profileJSON, sanitizePrompt(prompt), budget, summarizeProfile(profile))
}

func buildEnrichmentUserPrompt(bundles []models.PartialBundle, profile models.RecipientProfile, prompt string) string {
	bundlesJSON, _ := json.MarshalIndent(bundles, "", "  ")
	return fmt.Sprintf("PROFILE (summary): %s\nPROMPT: %q\n\nBUNDLES (JSON):\n%s\n\nFor each bundle, return {\"title\", \"rationale\"} in a JSON array, same order.",
		summarizeProfile(profile), sanitizePrompt(prompt), bundlesJSON)
}

// summarizeProfile condenses a profile into one line for prompt context.
func summarizeProfile(profile models.RecipientProfile) string {
	var parts []string
	if profile.Relationship != "" {
		parts = append(parts, profile.Relationship)
	}
	if profile.AgeRange != "" {
		parts = append(parts, profile.AgeRange)
	}
	if len(profile.Interests) > 0 {
		parts = append(parts, "interests: "+strings.Join(profile.Interests, ", "))
	}
	if len(profile.Style) > 0 {
		parts = append(parts, "style: "+strings.Join(profile.Style, ", "))
	}
	if len(profile.Dislikes) > 0 {
		parts = append(parts, "dislikes: "+strings.Join(profile.Dislikes, ", "))
	}
	if len(profile.Allergies) > 0 {
		parts = append(parts, "allergies: "+strings.Join(profile.Allergies, ", "))
	}
	if len(parts) == 0 {
		return "No specific profile details provided"
	}
	return strings.Join(parts, "; ")
}

// sanitizePrompt strips angle brackets and bounds length before the text is
// embedded in a model prompt.
func sanitizePrompt(prompt string) string {
	prompt = strings.NewReplacer("<", "", ">", "").Replace(prompt)
	if len(prompt) > 500 {
		prompt = prompt[:500]
	}
	return strings.TrimSpace(prompt)
}
