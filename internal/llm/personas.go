package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tanachan3/looqn-all/internal/model"
	"github.com/tanachan3/looqn-all/internal/persona"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var personaSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"personas": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"label": {Type: genai.TypeString},
					"age": {
						Type: genai.TypeString,
						Enum: []string{"teen", "20s", "30s-40s", "50+"},
					},
					"gender": {
						Type: genai.TypeString,
						Enum: []string{"male", "female", "nonbinary", "unspecified"},
					},
					"education": {
						Type: genai.TypeString,
						Enum: []string{"secondary", "vocational", "undergraduate", "graduate", "self-taught"},
					},
				},
				PropertyOrdering: []string{"label", "age", "gender", "education"},
			},
		},
	},
}

const personaSystemPrompt = `You are a localization strategist for a hyperlocal social app.
From coordinates + current UTC (and optional nearby public places), infer suitable public-space roles.
Return exactly N *diverse* personas with age, gender, and education metadata.

Output rules:
- JSON only: {"personas":[{"label":"...","age":"teen|20s|30s-40s|50+","gender":"male|female|nonbinary|unspecified","education":"secondary|vocational|undergraduate|graduate|self-taught"}]}
- Labels: concise English (3-8 words), internal use only.
- Aim for diversity across age/gender/education (when N >= 3, include >= 3 distinct education buckets if plausible).
- Public-space roles only (commuter, office worker, runner, photo walker, campus student, market-goer, neighbor, etc.).
- Avoid stereotypes & sensitive content; respectful & neutral. No private businesses.`

type proposedPersona struct {
	Label     string `json:"label"`
	Age       string `json:"age"`
	Gender    string `json:"gender"`
	Education string `json:"education"`
}

// ProposePersonas issues one structured-generation call asking for
// q.Count diverse personas. Returned fields are clamped against their
// enums and deduplicated by label; failures degrade to an empty slice.
func (c *Client) ProposePersonas(ctx context.Context, q persona.Query) ([]model.PersonaDetail, error) {
	now := q.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	hemisphere := "north"
	if q.Latitude < 0 {
		hemisphere = "south"
	}

	nearby := "none"
	if len(q.Nearby) > 0 {
		nearby = strings.Join(q.Nearby, ", ")
	}
	hint := q.PlaceHint
	if hint == "" {
		hint = "none"
	}

	user := fmt.Sprintf(`Latitude: %g
Longitude: %g
Hemisphere: %s
Current UTC: %s
Target message language (context only): %s
Nearby public places (may be ignored): %s
Optional hint: %s
N: %d

Return only the JSON object described above.`,
		q.Latitude, q.Longitude, hemisphere, now.Format(time.RFC3339), q.Language, nearby, hint, q.Count)

	text, err := c.generateJSON(ctx, personaSystemPrompt, user, personaSchema, 0.35, 0.95, 360)
	if err != nil {
		return nil, err
	}

	parsed := decodeOrDefault(text, struct {
		Personas []proposedPersona `json:"personas"`
	}{})

	seen := make(map[string]bool)
	var out []model.PersonaDetail
	for _, p := range parsed.Personas {
		label := strings.TrimSpace(p.Label)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, model.PersonaDetail{
			Label:     label,
			Age:       model.NormalizeAge(p.Age),
			Gender:    model.NormalizeGender(p.Gender),
			Education: model.NormalizeEducation(p.Education),
		})
		if len(out) == q.Count {
			break
		}
	}

	c.log.Debug("personas proposed", zap.Int("count", len(out)))
	return out, nil
}
