package llm

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

var messagesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"messages": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
}

// GenerateMessages issues the final generation call and returns the raw
// message strings. Malformed JSON degrades to an empty slice; only a
// transport failure is returned as an error.
func (c *Client) GenerateMessages(ctx context.Context, systemPrompt, userPrompt string) ([]string, error) {
	text, err := c.generateJSON(ctx, systemPrompt, userPrompt, messagesSchema, c.genTemperature, 0.9, c.genMaxTokens)
	if err != nil {
		return nil, err
	}

	parsed := decodeOrDefault(text, struct {
		Messages []string `json:"messages"`
	}{})

	c.log.Debug("messages generated", zap.Int("count", len(parsed.Messages)))
	return parsed.Messages, nil
}
