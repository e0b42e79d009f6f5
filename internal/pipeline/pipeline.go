// Package pipeline coordinates one message-generation run: normalize
// the request, resolve and localize landmarks, synthesize personas,
// plan styles, compose prompts, generate, and validate. Only invalid
// coordinates abort a run; every other failure degrades to a smaller
// result.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/tanachan3/looqn-all/internal/model"
	"github.com/tanachan3/looqn-all/internal/persona"
	"github.com/tanachan3/looqn-all/internal/prompt"
	"github.com/tanachan3/looqn-all/internal/request"
	"github.com/tanachan3/looqn-all/internal/style"
	"go.uber.org/zap"
)

// LandmarkSource resolves nearby public landmarks for a coordinate.
type LandmarkSource interface {
	Resolve(ctx context.Context, coord model.Coordinate, radiusMeters int, language string, callerSupplied []string) []model.Landmark
}

// LanguageModel is the subset of the model service the pipeline uses.
type LanguageModel interface {
	persona.Proposer
	LocalizeTerms(ctx context.Context, names []string, language string) ([]model.LocalizedTerm, error)
	GenerateMessages(ctx context.Context, systemPrompt, userPrompt string) ([]string, error)
}

// Journal receives a write-only record of each completed run. It never
// feeds back into pipeline control flow.
type Journal interface {
	Append(ctx context.Context, run Run) error
}

// Run summarizes one completed pipeline invocation for diagnostics.
type Run struct {
	StartedAt time.Time
	Request   model.GenerationRequest
	Landmarks []model.Landmark
	Localized []model.LocalizedTerm
	Personas  []model.PersonaDetail
	StylePlan []model.StyleTag
	Messages  []string
	Degraded  bool
}

// Result is what a run returns to the caller.
type Result struct {
	Messages []string           `json:"messages"`
	Debug    []MessageDebugInfo `json:"debug,omitempty"`
}

// MessageDebugInfo maps one output message back to its persona, style,
// and whitelist usage. Only populated when the request sets debug.
type MessageDebugInfo struct {
	Index          int                 `json:"index"`
	Persona        model.PersonaDetail `json:"persona"`
	Style          model.StyleTag      `json:"style"`
	UsedProperNoun string              `json:"used_proper_noun,omitempty"`
	LengthBytes    int                 `json:"length_bytes"`
	Preview        string              `json:"preview"`
}

// Pipeline holds the injected collaborators for all runs. Construct it
// once at process start; it has no per-run mutable state.
type Pipeline struct {
	Landmarks LandmarkSource
	Model     LanguageModel
	Journal   Journal
	Log       *zap.Logger
	Now       func() time.Time
}

// New wires a pipeline. Journal may be nil.
func New(landmarks LandmarkSource, lm LanguageModel, journal Journal, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		Landmarks: landmarks,
		Model:     lm,
		Journal:   journal,
		Log:       log,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one generation request end to end.
func (p *Pipeline) Run(ctx context.Context, payload request.Payload) (*Result, error) {
	req, rawPersonas, err := request.Normalize(payload)
	if err != nil {
		return nil, err
	}
	startedAt := p.Now()
	degraded := false

	p.Log.Info("run normalized",
		zap.Float64("lat", req.Position.Latitude),
		zap.Float64("lng", req.Position.Longitude),
		zap.String("language", req.Language),
		zap.Int("radius_m", req.RadiusMeters),
		zap.Int("count", req.Count),
		zap.Bool("debug", req.Debug))

	landmarks := p.Landmarks.Resolve(ctx, req.Position, req.RadiusMeters, req.Language, req.ProperNouns)
	names := make([]string, 0, len(landmarks))
	for _, l := range landmarks {
		names = append(names, l.Name)
	}

	localized, err := p.Model.LocalizeTerms(ctx, names, req.Language)
	if err != nil {
		p.Log.Warn("localization failed", zap.Error(err))
		localized = nil
		degraded = true
	}
	displayNouns := make([]string, 0, len(localized))
	for _, t := range localized {
		displayNouns = append(displayNouns, t.Display)
	}

	personas := persona.Synthesize(ctx, p.Model, persona.Query{
		Latitude:  req.Position.Latitude,
		Longitude: req.Position.Longitude,
		Language:  req.Language,
		Count:     req.Count,
		PlaceHint: req.PlaceHint,
		Nearby:    displayNouns,
		Now:       startedAt,
	}, rawPersonas, p.Log)

	stylePlan := style.Plan(req.Count)

	p.Log.Info("run planned",
		zap.Int("landmarks", len(landmarks)),
		zap.Strings("display_nouns", displayNouns),
		zap.Any("personas", personas),
		zap.Any("style_plan", stylePlan))

	in := prompt.Input{
		Position:     req.Position,
		Language:     req.Language,
		RadiusMeters: req.RadiusMeters,
		Count:        req.Count,
		PlaceHint:    req.PlaceHint,
		DisplayNouns: displayNouns,
		Personas:     personas,
		StylePlan:    stylePlan,
		Now:          startedAt,
	}
	systemPrompt := prompt.ComposeSystem(in)
	userPrompt := prompt.ComposeUser(in)

	raw, err := p.Model.GenerateMessages(ctx, systemPrompt, userPrompt)
	if err != nil {
		p.Log.Error("generation failed", zap.Error(err))
		raw = nil
		degraded = true
	}

	validated := validateMessages(raw, stylePlan, req.Count)
	messages := make([]string, 0, len(validated))
	for _, v := range validated {
		messages = append(messages, v.Text)
	}

	p.Log.Info("run finished",
		zap.Int("requested", req.Count),
		zap.Int("messages", len(messages)),
		zap.Bool("degraded", degraded))

	result := &Result{Messages: messages}
	if req.Debug {
		result.Debug = buildDebugInfo(validated, personas, displayNouns)
	}

	if p.Journal != nil {
		run := Run{
			StartedAt: startedAt,
			Request:   *req,
			Landmarks: landmarks,
			Localized: localized,
			Personas:  personas,
			StylePlan: stylePlan,
			Messages:  messages,
			Degraded:  degraded,
		}
		if err := p.Journal.Append(ctx, run); err != nil {
			p.Log.Warn("journal append failed", zap.Error(err))
		}
	}

	return result, nil
}

// validateMessages caps the batch at the requested count, trims, drops
// empties, clamps to the byte limit, and records each surviving message
// with its slot provenance.
func validateMessages(raw []string, stylePlan []model.StyleTag, count int) []model.GeneratedMessage {
	if len(raw) > count {
		raw = raw[:count]
	}
	out := make([]model.GeneratedMessage, 0, len(raw))
	for i, m := range raw {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		g := model.GeneratedMessage{
			Text:         ClampUTF8(m, maxMessageBytes),
			PersonaIndex: i,
		}
		if i < len(stylePlan) {
			g.Style = stylePlan[i]
		}
		out = append(out, g)
	}
	return out
}

func buildDebugInfo(validated []model.GeneratedMessage, personas []model.PersonaDetail, displayNouns []string) []MessageDebugInfo {
	var out []MessageDebugInfo
	for i, v := range validated {
		info := MessageDebugInfo{
			Index:       i + 1,
			Style:       v.Style,
			LengthBytes: len(v.Text),
			Preview:     ClampUTF8(v.Text, 80),
		}
		if v.PersonaIndex < len(personas) {
			info.Persona = personas[v.PersonaIndex]
		}
		for _, n := range displayNouns {
			if strings.Contains(v.Text, n) {
				info.UsedProperNoun = n
				break
			}
		}
		out = append(out, info)
	}
	return out
}
