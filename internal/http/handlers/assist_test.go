package handlers

import (
	"context"
	"testing"
)

func TestGetCosts(t *testing.T) {
	output, err := GetCosts(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	costs := output.Body.Costs
	tests := []struct {
		feature string
		want    int
	}{
		{"reframe_casual", 6},
		{"convert_concise", 8},
		{"persona_generator", 10},
		{"image_prompt", 12},
		{"explain_story", 5},
		{"smart_followups", 15},
		{"save_note", 0},
	}
	for _, tt := range tests {
		if got, ok := costs[tt.feature]; !ok || got != tt.want {
			t.Errorf("costs[%q] = %d (present %v), want %d", tt.feature, got, ok, tt.want)
		}
	}

	if len(costs) != 21 {
		t.Errorf("got %d features in cost table, want 21", len(costs))
	}
}

func TestGetFeatures(t *testing.T) {
	output, err := GetFeatures(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	features := output.Body.Features
	if len(features) != 21 {
		t.Fatalf("got %d features, want 21", len(features))
	}

	byID := make(map[string]FeatureInfo, len(features))
	for _, f := range features {
		if f.Placeholder == "" {
			t.Errorf("feature %q has no placeholder", f.Feature)
		}
		byID[f.Feature] = f
	}

	if f := byID["save_note"]; !f.Free || f.Cost != 0 {
		t.Errorf("save_note = %+v, want free", f)
	}
	if f := byID["smart_actions"]; f.Free || f.Cost != 15 {
		t.Errorf("smart_actions = %+v, want cost 15", f)
	}
}
