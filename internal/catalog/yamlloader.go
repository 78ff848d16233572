package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the top-level structure of a catalog YAML file.
//
// Example:
//
//	personas:
//	  - id: frugal_fiona
//	    name: "Frugal Fiona"
//	    description: "Procurement lead with a hard budget cap"
//	    avatar: "💰"
//	    system_prompt: |
//	      You are Frugal Fiona, ...
//	scenarios:
//	  - id: renewal
//	    name: "Renewal Call"
//	    description: "Existing customer up for renewal"
//	    icon: "🔁"
//	    initial_context: "This is a renewal call ..."
//	    objectives: ["Confirm value delivered", "Secure the renewal"]
//	pitch_lengths:
//	  - id: lightning
//	    name: "Lightning Pitch"
//	    duration: 15
//	    description: "15 seconds - One sentence hook"
type File struct {
	Personas     []Persona     `yaml:"personas"`
	Scenarios    []Scenario    `yaml:"scenarios"`
	PitchLengths []PitchLength `yaml:"pitch_lengths"`
}

// LoadFile reads and parses a catalog YAML file from disk.
// Returns a descriptive error if the file cannot be opened or parsed.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open file %q: %w", path, err)
	}
	defer f.Close()

	cf, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse file %q: %w", path, err)
	}
	return cf, nil
}

// LoadFromReader parses catalog YAML from an [io.Reader].
// The reader is consumed entirely; the caller is responsible for closing it.
func LoadFromReader(r io.Reader) (*File, error) {
	var cf File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	return &cf, nil
}
