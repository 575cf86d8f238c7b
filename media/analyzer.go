package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"
)

const describePrompt = `You are an image tagging service. Look at the attached image and reply with JSON only, no prose, in this shape:
{"tags": [{"name": "<single lower-case word or short phrase>", "confidence": <0..1>}], "category": "<one broad category>", "caption": "<one sentence describing the image>"}

- List up to 20 tags ordered by confidence, highest first.
- Use common nouns and adjectives (objects, scenery, activities, mood).
- Categorization scheme: %s.`

const captionlessPrompt = `
- Leave "caption" empty.`

// GeminiTagger describes images with a Gemini vision model.
type GeminiTagger struct {
	client *genai.Client
	model  string
}

func NewGeminiTagger(ctx context.Context, apiKey, model string) (*GeminiTagger, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiTagger{client: client, model: model}, nil
}

func (t *GeminiTagger) Describe(ctx context.Context, data []byte, contentType string, opts UploadOptions) (*Description, error) {
	prompt := fmt.Sprintf(describePrompt, opts.Categorization)
	if !opts.Captioning {
		prompt += captionlessPrompt
	}

	contents := genai.Text(prompt)
	contents[0].Parts = append(contents[0].Parts, &genai.Part{
		InlineData: &genai.Blob{Data: data, MIMEType: contentType},
	})

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, errors.New("no candidates returned from gemini")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("empty content returned from gemini")
	}

	return parseDescription(text.String(), opts.AutoTaggingThreshold)
}

type describeResponse struct {
	Tags []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"tags"`
	Category string `json:"category"`
	Caption  string `json:"caption"`
}

// parseDescription keeps tags at or above threshold, highest confidence
// first, without duplicates.
func parseDescription(raw string, threshold float64) (*Description, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var resp describeResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); err != nil {
		return nil, fmt.Errorf("unexpected response format from gemini: %w", err)
	}

	sort.SliceStable(resp.Tags, func(i, j int) bool {
		return resp.Tags[i].Confidence > resp.Tags[j].Confidence
	})

	seen := make(map[string]bool, len(resp.Tags))
	tags := make([]string, 0, len(resp.Tags))
	for _, tag := range resp.Tags {
		name := strings.TrimSpace(tag.Name)
		key := strings.ToLower(name)
		if name == "" || tag.Confidence < threshold || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, name)
	}

	return &Description{Tags: tags, Caption: strings.TrimSpace(resp.Caption)}, nil
}
