// Package persona builds the per-message author profiles that steer
// generation style. Caller-supplied personas take priority, then one
// model proposal call covers the gap, then a static fallback table
// guarantees every slot is filled.
package persona

import (
	"context"
	"strings"
	"time"

	"github.com/tanachan3/looqn-all/internal/model"
	"go.uber.org/zap"
)

// Query carries the context a proposer may condition on.
type Query struct {
	Latitude  float64
	Longitude float64
	Language  string
	Count     int
	PlaceHint string
	Nearby    []string
	Now       time.Time
}

// Proposer asks the language-model service for persona suggestions.
// Implementations degrade to an empty slice on malformed output.
type Proposer interface {
	ProposePersonas(ctx context.Context, q Query) ([]model.PersonaDetail, error)
}

// Fallback is the static persona table used to backfill any slot the
// caller and the model both leave empty. Slots cycle by index modulo
// the table length.
var Fallback = []model.PersonaDetail{
	{Label: "commuter (polite)", Age: model.Age30s40s, Gender: model.GenderUnspecified, Education: model.EduUndergraduate},
	{Label: "student (casual)", Age: model.Age20s, Gender: model.GenderUnspecified, Education: model.EduUndergraduate},
	{Label: "neighbor (friendly)", Age: model.Age50Plus, Gender: model.GenderUnspecified, Education: model.EduSecondary},
	{Label: "runner (brisk)", Age: model.Age30s40s, Gender: model.GenderUnspecified, Education: model.EduVocational},
	{Label: "photo walker", Age: model.Age20s, Gender: model.GenderUnspecified, Education: model.EduSelfTaught},
}

// NormalizeCaller converts raw caller-supplied persona entries into
// validated details. String shorthand becomes a persona with default
// brackets; object form has each field clamped to its enum. Entries
// without a usable label are dropped.
func NormalizeCaller(raw []any) []model.PersonaDetail {
	var out []model.PersonaDetail
	for _, v := range raw {
		switch p := v.(type) {
		case string:
			label := strings.TrimSpace(p)
			if label == "" {
				continue
			}
			out = append(out, model.PersonaDetail{
				Label:     label,
				Age:       model.DefaultAge,
				Gender:    model.DefaultGender,
				Education: model.DefaultEducation,
			})
		case map[string]any:
			label := strings.TrimSpace(asString(p["label"]))
			if label == "" {
				continue
			}
			out = append(out, model.PersonaDetail{
				Label:     label,
				Age:       model.NormalizeAge(asString(p["age"])),
				Gender:    model.NormalizeGender(asString(p["gender"])),
				Education: normalizeCallerEducation(asString(p["education"])),
			})
		}
	}
	return out
}

// normalizeCallerEducation accepts only exact enum values from callers;
// anything else is unspecified. Synonym mapping is reserved for model
// output, which is where the loose spellings come from.
func normalizeCallerEducation(s string) model.EducationBucket {
	switch model.EducationBucket(s) {
	case model.EduSecondary, model.EduVocational, model.EduUndergraduate,
		model.EduGraduate, model.EduSelfTaught, model.EduUnspecified:
		return model.EducationBucket(s)
	default:
		return model.DefaultEducation
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Synthesize produces exactly q.Count personas: caller-supplied first,
// then one proposal call for the remainder, then fallback backfill.
// Every returned persona has a non-empty label and enum-valid brackets.
func Synthesize(ctx context.Context, proposer Proposer, q Query, callerRaw []any, log *zap.Logger) []model.PersonaDetail {
	if log == nil {
		log = zap.NewNop()
	}

	personas := NormalizeCaller(callerRaw)
	if len(personas) > q.Count {
		personas = personas[:q.Count]
	}

	if len(personas) < q.Count && proposer != nil {
		proposed, err := proposer.ProposePersonas(ctx, q)
		if err != nil {
			log.Warn("persona proposal failed", zap.Error(err))
		}
		have := len(personas)
		for i := have; i < q.Count && i < len(proposed); i++ {
			personas = append(personas, proposed[i])
		}
	}

	for i := len(personas); i < q.Count; i++ {
		personas = append(personas, Fallback[i%len(Fallback)])
	}
	return personas[:q.Count]
}
