// Package llm extracts gift intents and enriches bundles with titles and
// rationales, either through a chat-completion API or a deterministic
// rule-based client.
package llm

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

// Client turns free-form gift requests into structured intents and gives
// assembled bundles their presentation layer.
type Client interface {
	ExtractIntent(ctx context.Context, profile models.RecipientProfile, prompt string, budget float64) (models.GiftIntent, error)
	EnrichBundles(ctx context.Context, bundles []models.PartialBundle, profile models.RecipientProfile, prompt string) ([]models.GiftBundle, error)
}

// OpenAIClient calls a chat-completions endpoint. Model output is expected
// to be strict JSON; markdown code fences are tolerated and stripped.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIClient creates a client against the given chat-completions API.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4"
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// wireIntent is the JSON shape the model returns; signals arrive as
// prefixed strings and are parsed at this boundary.
type wireIntent struct {
	HardConstraints  []string `json:"hardConstraints"`
	SoftPrefs        []string `json:"softPrefs"`
	TargetCategories []string `json:"targetCategories"`
	BudgetStrategy   string   `json:"budgetStrategy"`
}

// ExtractIntent asks the model for a GiftIntent and validates the result.
func (c *OpenAIClient) ExtractIntent(ctx context.Context, profile models.RecipientProfile, prompt string, budget float64) (models.GiftIntent, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: intentSystemPrompt},
			{Role: "user", Content: buildIntentUserPrompt(profile, prompt, budget)},
		},
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		return models.GiftIntent{}, fmt.Errorf("failed to extract intent: %w", err)
	}

	var wire wireIntent
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &wire); err != nil {
		return models.GiftIntent{}, fmt.Errorf("invalid intent JSON from model: %w", err)
	}

	strategy := models.BudgetStrategy(wire.BudgetStrategy)
	if wire.HardConstraints == nil || wire.SoftPrefs == nil || wire.TargetCategories == nil || !strategy.Valid() {
		return models.GiftIntent{}, fmt.Errorf("model returned malformed intent structure")
	}

	return models.GiftIntent{
		HardConstraints:  models.ParseSignals(wire.HardConstraints),
		SoftPrefs:        models.ParseSignals(wire.SoftPrefs),
		TargetCategories: wire.TargetCategories,
		BudgetStrategy:   strategy,
	}, nil
}

// wireEnrichment is the per-bundle enrichment shape the model returns.
type wireEnrichment struct {
	Title     string `json:"title"`
	Rationale string `json:"rationale"`
}

// EnrichBundles asks the model for a title and rationale per bundle. Items
// and prices are never modified; only presentation fields are attached.
// A short model response falls back to placeholders for the tail.
func (c *OpenAIClient) EnrichBundles(ctx context.Context, bundles []models.PartialBundle, profile models.RecipientProfile, prompt string) ([]models.GiftBundle, error) {
	if len(bundles) == 0 {
		return []models.GiftBundle{}, nil
	}

	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: enrichmentSystemPrompt},
			{Role: "user", Content: buildEnrichmentUserPrompt(bundles, profile, prompt)},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enrich bundles: %w", err)
	}

	var wire []wireEnrichment
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &wire); err != nil {
		return nil, fmt.Errorf("invalid enrichment JSON from model: %w", err)
	}

	enriched := make([]models.GiftBundle, 0, len(bundles))
	for i, bundle := range bundles {
		title := PlaceholderTitle(i)
		rationale := PlaceholderRationale
		if i < len(wire) {
			if wire[i].Title != "" {
				title = wire[i].Title
			}
			if wire[i].Rationale != "" {
				rationale = wire[i].Rationale
			}
		}
		enriched = append(enriched, bundle.Enriched(title, rationale))
	}
	return enriched, nil
}

func (c *OpenAIClient) complete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call chat completions API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions API returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion from model")
	}
	return chat.Choices[0].Message.Content, nil
}

// stripCodeFences removes markdown ```json fences models often wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// PlaceholderTitle is the generic title used when no better one exists.
func PlaceholderTitle(index int) string {
	return fmt.Sprintf("Gift Bundle %d", index+1)
}

// PlaceholderRationale is the generic rationale used when no better one exists.
const PlaceholderRationale = "A thoughtfully curated selection of items that fit your budget."
