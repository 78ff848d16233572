package feedback_test

import (
	"slices"
	"testing"

	"github.com/MrWong99/salespractice/internal/feedback"
)

func TestParseResearch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		wantSummary string
		wantPoints  []string
	}{
		{
			name:        "well formed",
			text:        "SUMMARY: Acme sells widgets.\n\nKEY POINTS:\n• Founded 1999\n- Based in Ohio\nnot a bullet\n\n• after blank line",
			wantSummary: "Acme sells widgets.",
			wantPoints:  []string{"Founded 1999", "Based in Ohio"},
		},
		{
			name:        "inline key points marker",
			text:        "SUMMARY: short KEY POINTS:\n• one",
			wantSummary: "short",
			wantPoints:  []string{"one"},
		},
		{
			name:        "missing everything",
			text:        "no structure",
			wantSummary: "Research completed for: acme",
			wantPoints: []string{
				"General information gathered about the topic",
				"Key business considerations identified",
				"Potential value propositions outlined",
				"Competitive landscape reviewed",
				"Market opportunities assessed",
			},
		},
		{
			name:        "missing points",
			text:        "SUMMARY: Just a summary.",
			wantSummary: "Just a summary.",
			wantPoints: []string{
				"Key information gathered about the topic",
				"Business context and background researched",
				"Relevant talking points identified",
			},
		},
		{
			name:        "missing summary",
			text:        "KEY POINTS:\n• one",
			wantSummary: "Research summary for acme",
			wantPoints:  []string{"one"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := feedback.ParseResearch("acme", tt.text)
			if got.Summary != tt.wantSummary {
				t.Errorf("summary = %q, want %q", got.Summary, tt.wantSummary)
			}
			if !slices.Equal(got.KeyPoints, tt.wantPoints) {
				t.Errorf("key points = %q, want %q", got.KeyPoints, tt.wantPoints)
			}
			if got.Query != "acme" || len(got.Sources) != 1 || got.Sources[0] != feedback.ResearchSource {
				t.Errorf("query/sources = %q/%q", got.Query, got.Sources)
			}
		})
	}
}
