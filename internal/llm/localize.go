package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tanachan3/looqn-all/internal/model"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// maxLocalizedTerms caps the localized pair list.
const maxLocalizedTerms = 10

var localizeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"terms": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"orig":    {Type: genai.TypeString},
					"display": {Type: genai.TypeString},
				},
				PropertyOrdering: []string{"orig", "display"},
			},
		},
	},
}

// LocalizeTerms translates or transliterates each place name into the
// target language, preserving the original-to-display pairing. An empty
// input is a no-op. Malformed model output degrades to an empty list.
func (c *Client) LocalizeTerms(ctx context.Context, names []string, language string) ([]model.LocalizedTerm, error) {
	if len(names) == 0 {
		return nil, nil
	}

	system := fmt.Sprintf(`You are a toponym localizer.
Translate or transliterate each public place name into exactly "%s".
Rules:
- Return JSON only: {"terms":[{"orig":"...","display":"..."}, ...]}
- Use exonyms in %s if well-known; otherwise natural transliteration (e.g., katakana for Japanese).
- Keep the place type if part of the proper name; otherwise omit.
- Keep pairs aligned and do not add/drop items.`, language, language)

	userBytes, err := json.Marshal(map[string][]string{"nouns": names})
	if err != nil {
		return nil, fmt.Errorf("marshaling nouns: %w", err)
	}

	text, err := c.generateJSON(ctx, system, string(userBytes), localizeSchema, 0, 1, 300)
	if err != nil {
		return nil, err
	}

	parsed := decodeOrDefault(text, struct {
		Terms []model.LocalizedTerm `json:"terms"`
	}{})

	seen := make(map[string]bool)
	var out []model.LocalizedTerm
	for _, t := range parsed.Terms {
		orig := strings.TrimSpace(t.Original)
		display := strings.TrimSpace(t.Display)
		if orig == "" || display == "" || seen[display] {
			continue
		}
		seen[display] = true
		out = append(out, model.LocalizedTerm{Original: orig, Display: display})
		if len(out) == maxLocalizedTerms {
			break
		}
	}

	c.log.Debug("localized terms", zap.Int("in", len(names)), zap.Int("out", len(out)))
	return out, nil
}
