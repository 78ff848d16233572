package catalog

import (
	"errors"
	"fmt"
)

// Validate checks every entry of a catalog file.
//
// Rules:
//   - Every entry needs a non-empty id and name; ids are unique per kind.
//   - Personas need a system prompt.
//   - Scenarios need an initial context.
//   - Pitch lengths need a positive duration.
func (f *File) Validate() error {
	var errs []error

	seen := map[string]bool{}
	for i, p := range f.Personas {
		errs = append(errs, checkIdentity("personas", i, p.ID, p.Name, seen)...)
		if p.SystemPrompt == "" {
			errs = append(errs, fmt.Errorf("personas[%d] %q: system_prompt must not be empty", i, p.ID))
		}
	}

	seen = map[string]bool{}
	for i, s := range f.Scenarios {
		errs = append(errs, checkIdentity("scenarios", i, s.ID, s.Name, seen)...)
		if s.InitialContext == "" {
			errs = append(errs, fmt.Errorf("scenarios[%d] %q: initial_context must not be empty", i, s.ID))
		}
	}

	seen = map[string]bool{}
	for i, pl := range f.PitchLengths {
		errs = append(errs, checkIdentity("pitch_lengths", i, pl.ID, pl.Name, seen)...)
		if pl.Duration <= 0 {
			errs = append(errs, fmt.Errorf("pitch_lengths[%d] %q: duration must be positive, got %d", i, pl.ID, pl.Duration))
		}
	}

	return errors.Join(errs...)
}

func checkIdentity(kind string, i int, id, name string, seen map[string]bool) []error {
	var errs []error
	if id == "" {
		errs = append(errs, fmt.Errorf("%s[%d]: id must not be empty", kind, i))
	} else if seen[id] {
		errs = append(errs, fmt.Errorf("%s[%d]: duplicate id %q", kind, i, id))
	}
	seen[id] = true
	if name == "" {
		errs = append(errs, fmt.Errorf("%s[%d]: name must not be empty", kind, i))
	}
	return errs
}
