package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/cqle/dba-virtual/backend/internal/config"
	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

type googleModelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGoogleClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// apiStatusError exposes the Gemini API status code to the invoker.
type apiStatusError struct {
	code int
	err  error
}

func (e *apiStatusError) Error() string { return e.err.Error() }
func (e *apiStatusError) Unwrap() error { return e.err }
func (e *apiStatusError) StatusCode() int { return e.code }

// GeminiGenerator calls the Gemini API through the Google GenAI SDK.
type GeminiGenerator struct {
	models      googleModelsClient
	model       string
	temperature *float32
	maxTokens   int32
}

// NewGeminiGenerator builds a generator from the gemini section of cfg.
func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig) (*GeminiGenerator, error) {
	apiKey := strings.TrimSpace(cfg.Gemini.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := newGoogleClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create google client: %w", err)
	}

	g := &GeminiGenerator{models: client.Models, model: cfg.Gemini.Model}
	if cfg.Temperature != nil {
		g.temperature = genai.Ptr(float32(*cfg.Temperature))
	}
	if cfg.MaxTokens != nil && *cfg.MaxTokens > 0 {
		g.maxTokens = int32(*cfg.MaxTokens)
	}
	return g, nil
}

// WithModel returns a copy of g targeting another model.
func (g *GeminiGenerator) WithModel(model string) *GeminiGenerator {
	clone := *g
	clone.model = model
	return &clone
}

func (g *GeminiGenerator) Name() string { return "gemini:" + g.model }

// Generate sends history plus prompt as one GenerateContent call.
func (g *GeminiGenerator) Generate(ctx context.Context, history []chat.Entry, prompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, entry := range history {
		role := genai.RoleModel
		if entry.Role == chat.RoleUser {
			role = genai.RoleUser
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: entry.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	})

	cfg := &genai.GenerateContentConfig{Temperature: g.temperature}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = g.maxTokens
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code != 0 {
			return "", &apiStatusError{code: apiErr.Code, err: err}
		}
		return "", err
	}
	return extractVisibleText(resp), nil
}

func extractVisibleText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
