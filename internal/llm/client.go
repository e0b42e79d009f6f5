// Package llm wraps the Gemini API behind the three structured-generation
// calls the pipeline makes: toponym localization, persona proposal, and
// final message generation. Every call requests strict JSON via a
// response schema; malformed output degrades to an empty result.
package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when the config does not name one.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey reports an absent service credential. It is a
// terminal precondition failure surfaced at construction time.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable not set")

// Client is a process-wide handle to the language-model service.
// Construct it once at startup and share it; it holds only read-only
// configuration and is safe for concurrent use.
type Client struct {
	genai *genai.Client
	model string
	log   *zap.Logger

	genTemperature float32
	genMaxTokens   int32
}

// NewClient creates a Client for the given API key and model.
func NewClient(ctx context.Context, apiKey, model string, log *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{
		genai:          gc,
		model:          model,
		log:            log,
		genTemperature: 0.5,
		genMaxTokens:   520,
	}, nil
}

// SetGenerationTuning overrides the temperature and output-token cap of
// the final generation call. Call before the client is shared; the
// localization and persona calls keep their fixed settings.
func (c *Client) SetGenerationTuning(temperature float64, maxTokens int) {
	if temperature > 0 {
		c.genTemperature = float32(temperature)
	}
	if maxTokens > 0 {
		c.genMaxTokens = int32(maxTokens)
	}
}

// generateJSON issues one structured-generation call and returns the
// raw response text.
func (c *Client) generateJSON(ctx context.Context, system, user string, schema *genai.Schema, temperature, topP float32, maxTokens int32) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseSchema:    schema,
		Temperature:       genai.Ptr(temperature),
		TopP:              genai.Ptr(topP),
		MaxOutputTokens:   maxTokens,
	}

	res, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(user), config)
	if err != nil {
		return "", err
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return res.Candidates[0].Content.Parts[0].Text, nil
}
