package journal

import (
	"context"
	"testing"
	"time"

	"github.com/tanachan3/looqn-all/internal/model"
	"github.com/tanachan3/looqn-all/internal/pipeline"
)

func testRun() pipeline.Run {
	return pipeline.Run{
		StartedAt: time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC),
		Request: model.GenerationRequest{
			Position:     model.Coordinate{Latitude: 35.6895, Longitude: 139.6917},
			Language:     "日本語",
			RadiusMeters: 500,
			Count:        3,
		},
		Landmarks: []model.Landmark{{Name: "新宿駅", DistanceMeters: 120}},
		Localized: []model.LocalizedTerm{{Original: "新宿駅", Display: "新宿駅"}},
		Personas: []model.PersonaDetail{
			{Label: "commuter (polite)", Age: model.Age30s40s, Gender: model.GenderUnspecified, Education: model.EduUndergraduate},
		},
		StylePlan: []model.StyleTag{model.StylePolite, model.StyleCasual, model.StylePlayful},
		Messages:  []string{"a.", "b!", "c?"},
	}
}

func TestAppendAndRecent(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Append(ctx, testRun()); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Language != "日本語" || e.Count != 3 || e.MessageCount != 3 {
		t.Errorf("entry fields wrong: %+v", e)
	}
	if len(e.Landmarks) != 1 || e.Landmarks[0] != "新宿駅" {
		t.Errorf("landmarks wrong: %v", e.Landmarks)
	}
	if len(e.Personas) != 1 || e.Personas[0] != "commuter (polite)" {
		t.Errorf("personas wrong: %v", e.Personas)
	}
	if len(e.StylePlan) != 3 {
		t.Errorf("style plan wrong: %v", e.StylePlan)
	}
	if e.Degraded {
		t.Error("run should not be marked degraded")
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		run := testRun()
		run.StartedAt = run.StartedAt.Add(time.Duration(i) * time.Minute)
		run.Request.Count = i + 1
		if err := s.Append(ctx, run); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Count != 3 || entries[1].Count != 2 {
		t.Errorf("expected newest first, got counts %d, %d", entries[0].Count, entries[1].Count)
	}
}

func TestCounts(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	ok := testRun()
	bad := testRun()
	bad.Degraded = true
	bad.Messages = nil

	if err := s.Append(ctx, ok); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, bad); err != nil {
		t.Fatalf("append: %v", err)
	}

	total, degraded, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if total != 2 || degraded != 1 {
		t.Errorf("expected 2 total / 1 degraded, got %d / %d", total, degraded)
	}
}
