package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tanachan3/looqn-all/internal/model"
	"github.com/tanachan3/looqn-all/internal/persona"
	"github.com/tanachan3/looqn-all/internal/request"
)

type fakeLandmarks struct {
	landmarks []model.Landmark
	calls     int
}

func (f *fakeLandmarks) Resolve(ctx context.Context, coord model.Coordinate, radiusMeters int, language string, callerSupplied []string) []model.Landmark {
	f.calls++
	if len(callerSupplied) > 0 {
		var out []model.Landmark
		seen := make(map[string]bool)
		for _, n := range callerSupplied {
			n = strings.TrimSpace(n)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, model.Landmark{Name: n})
		}
		return out
	}
	return f.landmarks
}

type fakeModel struct {
	localizeErr  error
	personas     []model.PersonaDetail
	personaErr   error
	messages     []string
	generateErr  error
	localizeIn   []string
	generateSys  string
	generateUser string
}

func (f *fakeModel) LocalizeTerms(ctx context.Context, names []string, language string) ([]model.LocalizedTerm, error) {
	f.localizeIn = names
	if f.localizeErr != nil {
		return nil, f.localizeErr
	}
	var out []model.LocalizedTerm
	for _, n := range names {
		out = append(out, model.LocalizedTerm{Original: n, Display: n})
	}
	return out, nil
}

func (f *fakeModel) ProposePersonas(ctx context.Context, q persona.Query) ([]model.PersonaDetail, error) {
	if f.personaErr != nil {
		return nil, f.personaErr
	}
	return f.personas, nil
}

func (f *fakeModel) GenerateMessages(ctx context.Context, systemPrompt, userPrompt string) ([]string, error) {
	f.generateSys = systemPrompt
	f.generateUser = userPrompt
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.messages, nil
}

func tokyoPayload(count int) request.Payload {
	return request.Payload{
		Position: map[string]any{"latitude": 35.6895, "longitude": 139.6917},
		Language: "日本語",
		Count:    float64(count),
	}
}

func TestRunHappyPath(t *testing.T) {
	lm := &fakeLandmarks{landmarks: []model.Landmark{
		{Name: "新宿駅", DistanceMeters: 120},
		{Name: "新宿御苑", DistanceMeters: 340},
	}}
	fm := &fakeModel{
		personas: []model.PersonaDetail{
			{Label: "p0", Age: model.Age20s, Gender: model.GenderUnspecified, Education: model.EduUndergraduate},
			{Label: "p1", Age: model.AgeTeen, Gender: model.GenderUnspecified, Education: model.EduSecondary},
			{Label: "p2", Age: model.Age50Plus, Gender: model.GenderUnspecified, Education: model.EduGraduate},
		},
		messages: []string{"新宿駅の近くは朝から人が多いですね。春の風が気持ちいいです。", "もう桜咲いてるんだ。散歩日和かも！", "夕方の光、きれいだな？"},
	}

	p := New(lm, fm, nil, nil)
	res, err := p.Run(context.Background(), tokyoPayload(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(res.Messages))
	}
	for i, m := range res.Messages {
		if m == "" {
			t.Errorf("message %d is empty", i)
		}
		if len(m) > 300 {
			t.Errorf("message %d exceeds 300 bytes: %d", i, len(m))
		}
	}

	endings := make(map[rune]bool)
	for _, m := range res.Messages {
		runes := []rune(m)
		endings[runes[len(runes)-1]] = true
	}
	if len(endings) < 3 {
		t.Errorf("expected at least 3 distinct final characters, got %d", len(endings))
	}

	if len(fm.localizeIn) != 2 {
		t.Errorf("localizer should receive the 2 resolved landmark names, got %v", fm.localizeIn)
	}
	if !strings.Contains(fm.generateUser, "新宿御苑") {
		t.Error("user prompt should include the display whitelist")
	}
}

func TestRunGeodataFailureDegrades(t *testing.T) {
	lm := &fakeLandmarks{landmarks: nil} // simulated Overpass outage
	fm := &fakeModel{
		personas: []model.PersonaDetail{{Label: "p0", Age: model.Age20s, Gender: model.GenderUnspecified, Education: model.EduUnspecified}},
		messages: []string{"静かな朝ですね。", "散歩したいかも！", "風が強いな？"},
	}

	p := New(lm, fm, nil, nil)
	res, err := p.Run(context.Background(), tokyoPayload(3))
	if err != nil {
		t.Fatalf("degraded path must not error: %v", err)
	}
	if len(res.Messages) == 0 || len(res.Messages) > 3 {
		t.Fatalf("expected 1..3 messages, got %d", len(res.Messages))
	}
	if len(fm.localizeIn) != 0 {
		t.Errorf("no landmarks means localizer gets an empty list, got %v", fm.localizeIn)
	}
	if !strings.Contains(fm.generateUser, "- (none)") {
		t.Error("user prompt should carry the explicit empty-whitelist marker")
	}
}

func TestRunAllModelCallsFail(t *testing.T) {
	lm := &fakeLandmarks{}
	fm := &fakeModel{
		localizeErr: errors.New("unavailable"),
		personaErr:  errors.New("unavailable"),
		generateErr: errors.New("unavailable"),
	}

	p := New(lm, fm, nil, nil)
	res, err := p.Run(context.Background(), tokyoPayload(3))
	if err != nil {
		t.Fatalf("model outage must degrade, not fail: %v", err)
	}
	if len(res.Messages) != 0 {
		t.Errorf("expected zero messages, got %v", res.Messages)
	}
	if res.Messages == nil {
		t.Error("messages must be an empty slice, not nil")
	}
}

func TestRunCallerPersonaString(t *testing.T) {
	lm := &fakeLandmarks{}
	fm := &fakeModel{messages: []string{"ok."}}

	payload := request.Payload{
		Position: map[string]any{"latitude": 0.0, "longitude": 0.0},
		Count:    float64(1),
		Personas: []any{"lighthouse keeper"},
		Debug:    true,
	}
	p := New(lm, fm, nil, nil)
	res, err := p.Run(context.Background(), payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Debug) != 1 {
		t.Fatalf("expected debug info for 1 message, got %d", len(res.Debug))
	}
	d := res.Debug[0]
	if d.Persona.Label != "lighthouse keeper" {
		t.Errorf("expected caller persona, got %+v", d.Persona)
	}
	if d.Persona.Age != model.Age20s || d.Persona.Gender != model.GenderUnspecified || d.Persona.Education != model.EduUnspecified {
		t.Errorf("string persona should get default brackets: %+v", d.Persona)
	}
	if d.Style != model.StylePolite {
		t.Errorf("first message style should be polite, got %s", d.Style)
	}
}

func TestRunInvalidPositionIsTerminal(t *testing.T) {
	lm := &fakeLandmarks{}
	fm := &fakeModel{messages: []string{"should never be produced"}}

	payload := request.Payload{
		Position: map[string]any{"latitude": "abc", "longitude": 10.0},
	}
	p := New(lm, fm, nil, nil)
	_, err := p.Run(context.Background(), payload)
	if !errors.Is(err, request.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
	if lm.calls != 0 {
		t.Error("no external calls may be issued for an invalid request")
	}
	if fm.generateUser != "" {
		t.Error("generation must not run for an invalid request")
	}
}

func TestRunCapsResultAtRequestedCount(t *testing.T) {
	lm := &fakeLandmarks{}
	fm := &fakeModel{messages: []string{"one.", "two!", "three?", "four.", "five!", "six?", "seven."}}

	p := New(lm, fm, nil, nil)
	res, err := p.Run(context.Background(), tokyoPayload(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Messages) != 3 {
		t.Fatalf("expected at most 3 messages when the model over-produces, got %d: %v", len(res.Messages), res.Messages)
	}
	if res.Messages[0] != "one." || res.Messages[2] != "three?" {
		t.Errorf("capping must keep the leading messages in order: %v", res.Messages)
	}
}

func TestRunClampsLongMessages(t *testing.T) {
	long := strings.Repeat("あ", 200) // 600 bytes
	lm := &fakeLandmarks{}
	fm := &fakeModel{messages: []string{long, "  ", "short."}}

	p := New(lm, fm, nil, nil)
	res, err := p.Run(context.Background(), tokyoPayload(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Messages) != 2 {
		t.Fatalf("blank messages should be dropped, got %d", len(res.Messages))
	}
	if len(res.Messages[0]) != 300 {
		t.Errorf("expected clamp to 300 bytes, got %d", len(res.Messages[0]))
	}
}

type captureJournal struct {
	runs []Run
	err  error
}

func (c *captureJournal) Append(ctx context.Context, run Run) error {
	c.runs = append(c.runs, run)
	return c.err
}

func TestRunWritesJournal(t *testing.T) {
	lm := &fakeLandmarks{landmarks: []model.Landmark{{Name: "駅前広場", DistanceMeters: 40}}}
	fm := &fakeModel{messages: []string{"ok."}}
	j := &captureJournal{}

	p := New(lm, fm, j, nil)
	if _, err := p.Run(context.Background(), tokyoPayload(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(j.runs) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(j.runs))
	}
	run := j.runs[0]
	if run.Request.Count != 1 || len(run.Messages) != 1 || len(run.Personas) != 1 {
		t.Errorf("journal entry incomplete: %+v", run)
	}
}

func TestRunJournalFailureIsNotFatal(t *testing.T) {
	lm := &fakeLandmarks{}
	fm := &fakeModel{messages: []string{"ok."}}
	j := &captureJournal{err: errors.New("disk full")}

	p := New(lm, fm, j, nil)
	res, err := p.Run(context.Background(), tokyoPayload(1))
	if err != nil {
		t.Fatalf("journal failure must not surface: %v", err)
	}
	if len(res.Messages) != 1 {
		t.Errorf("expected 1 message, got %d", len(res.Messages))
	}
}
