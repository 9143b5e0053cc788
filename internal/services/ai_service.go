// internal/services/ai_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kivoa/catalog-backend/internal/config"
)

// GeneratedListing holds the title and description produced by the vision
// capability for one product photo.
type GeneratedListing struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

const listingPrompt = `You are writing a product listing for a jewelry catalog.
Look at the photo and respond with a JSON object containing exactly two
fields: "title" (at most 70 characters, no quotes inside) and "description"
(2-3 sentences of marketing copy). Respond with the JSON object only.`

// GeminiService wraps the Gemini API for per-image generation calls.
// Individual calls carry no success guarantee; callers decide whether a
// failure is fatal to their pipeline.
type GeminiService struct {
	client *genai.Client
	model  string
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{client: client, model: cfg.Model}, nil
}

// GenerateImage asks the model to transform the source photo according to
// the prompt and returns the generated image bytes.
func (s *GeminiService) GenerateImage(ctx context.Context, image []byte, mimeType, prompt string) ([]byte, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, fmt.Errorf("image generation returned no image data")
}

// GenerateListing produces a title and description from the source photo.
func (s *GeminiService) GenerateListing(ctx context.Context, image []byte, mimeType string) (GeneratedListing, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(listingPrompt),
		}, genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return GeneratedListing{}, fmt.Errorf("listing generation failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	listing, err := parseListingJSON(text)
	if err != nil {
		return GeneratedListing{}, err
	}
	return listing, nil
}

// parseListingJSON tolerates markdown code fences around the model's JSON.
func parseListingJSON(text string) (GeneratedListing, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var listing GeneratedListing
	if err := json.Unmarshal([]byte(text), &listing); err != nil {
		return GeneratedListing{}, fmt.Errorf("failed to parse listing response: %w", err)
	}
	if listing.Title == "" {
		return GeneratedListing{}, fmt.Errorf("listing response missing title")
	}
	return listing, nil
}
