package catalog_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/salespractice/internal/catalog"
)

func TestDefault_BuiltinsInOrder(t *testing.T) {
	t.Parallel()

	c := catalog.Default()

	wantPersonas := []string{"skeptical_steve", "busy_betty", "technical_tom"}
	got := c.Personas()
	if len(got) != len(wantPersonas) {
		t.Fatalf("personas = %d, want %d", len(got), len(wantPersonas))
	}
	for i, id := range wantPersonas {
		if got[i].ID != id {
			t.Errorf("personas[%d] = %q, want %q", i, got[i].ID, id)
		}
	}

	wantScenarios := []string{"cold_call", "product_demo", "objection_handling"}
	for i, s := range c.Scenarios() {
		if s.ID != wantScenarios[i] {
			t.Errorf("scenarios[%d] = %q, want %q", i, s.ID, wantScenarios[i])
		}
		if len(s.Objectives) != 4 {
			t.Errorf("scenario %q: objectives = %d, want 4", s.ID, len(s.Objectives))
		}
	}

	wantDurations := map[string]int{"elevator": 30, "short": 60, "standard": 120, "extended": 300}
	for _, pl := range c.PitchLengths() {
		if wantDurations[pl.ID] != pl.Duration {
			t.Errorf("pitch length %q: duration = %d, want %d", pl.ID, pl.Duration, wantDurations[pl.ID])
		}
	}
}

func TestDefault_Lookup(t *testing.T) {
	t.Parallel()

	c := catalog.Default()

	p, ok := c.Persona("busy_betty")
	if !ok || p.Name != "Busy Betty" {
		t.Fatalf("Persona(busy_betty) = %+v, %v", p, ok)
	}
	if !strings.Contains(p.SystemPrompt, "I only have 5 minutes") {
		t.Error("busy_betty system prompt missing signature phrase")
	}
	if _, ok := c.Persona("nobody"); ok {
		t.Error("expected unknown persona lookup to fail")
	}
	if _, ok := c.Scenario("cold_call"); !ok {
		t.Error("expected cold_call scenario")
	}
	if pl, ok := c.PitchLength("standard"); !ok || pl.Duration != 120 {
		t.Errorf("PitchLength(standard) = %+v, %v", pl, ok)
	}
}

func TestScenario_ReturnsCopy(t *testing.T) {
	t.Parallel()

	c := catalog.Default()
	s, _ := c.Scenario("product_demo")
	s.Objectives[0] = "mutated"

	again, _ := c.Scenario("product_demo")
	if again.Objectives[0] == "mutated" {
		t.Fatal("catalog entry was mutated through a returned copy")
	}
}

const overrideYAML = `
personas:
  - id: busy_betty
    name: "Busy Betty"
    description: "Even busier"
    avatar: "⌛"
    system_prompt: "You are Busy Betty and you have two minutes."
  - id: frugal_fiona
    name: "Frugal Fiona"
    description: "Hard budget cap"
    avatar: "💰"
    system_prompt: "You are Frugal Fiona."
pitch_lengths:
  - id: lightning
    name: "Lightning Pitch"
    duration: 15
    description: "15 seconds"
`

func TestMerge_OverridesInPlaceAndAppends(t *testing.T) {
	t.Parallel()

	f, err := catalog.LoadFromReader(strings.NewReader(overrideYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	merged, err := catalog.Default().Merge(f)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	ps := merged.Personas()
	if len(ps) != 4 {
		t.Fatalf("personas = %d, want 4", len(ps))
	}
	if ps[1].ID != "busy_betty" || ps[1].Description != "Even busier" {
		t.Errorf("personas[1] = %+v, want overridden busy_betty in place", ps[1])
	}
	if ps[3].ID != "frugal_fiona" {
		t.Errorf("personas[3] = %q, want frugal_fiona appended", ps[3].ID)
	}
	if _, ok := merged.PitchLength("lightning"); !ok {
		t.Error("expected lightning pitch length after merge")
	}

	// The default catalog is untouched.
	orig, _ := catalog.Default().Persona("busy_betty")
	if orig.Description != "Quick decision-maker, always in a hurry" {
		t.Errorf("default catalog changed: %q", orig.Description)
	}
}

func TestLoadFromReader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "unknown field", input: "personas:\n  - id: x\n    nickname: y\n"},
		{name: "malformed", input: "personas: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := catalog.LoadFromReader(strings.NewReader(tt.input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadFromReader_Empty(t *testing.T) {
	t.Parallel()
	f, err := catalog.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Personas)+len(f.Scenarios)+len(f.PitchLengths) != 0 {
		t.Error("expected empty file")
	}
}

func TestFileValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    catalog.File
		wantErr string
	}{
		{
			name:    "missing id",
			file:    catalog.File{Personas: []catalog.Persona{{Name: "X", SystemPrompt: "p"}}},
			wantErr: "id must not be empty",
		},
		{
			name: "duplicate id",
			file: catalog.File{Scenarios: []catalog.Scenario{
				{ID: "a", Name: "A", InitialContext: "c"},
				{ID: "a", Name: "B", InitialContext: "c"},
			}},
			wantErr: "duplicate id",
		},
		{
			name:    "persona without prompt",
			file:    catalog.File{Personas: []catalog.Persona{{ID: "x", Name: "X"}}},
			wantErr: "system_prompt",
		},
		{
			name:    "scenario without context",
			file:    catalog.File{Scenarios: []catalog.Scenario{{ID: "s", Name: "S"}}},
			wantErr: "initial_context",
		},
		{
			name:    "zero duration",
			file:    catalog.File{PitchLengths: []catalog.PitchLength{{ID: "p", Name: "P"}}},
			wantErr: "duration must be positive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.file.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestPitchSession_TimeRatio(t *testing.T) {
	t.Parallel()

	ps := catalog.PitchSession{PitchLength: catalog.PitchLength{Duration: 60}, Duration: 45}
	if got := ps.TimeRatio(); got != 0.75 {
		t.Errorf("TimeRatio = %v, want 0.75", got)
	}
	if got := (catalog.PitchSession{Duration: 10}).TimeRatio(); got != 0 {
		t.Errorf("TimeRatio with zero allotment = %v, want 0", got)
	}
}
