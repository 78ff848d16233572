package catalog

import (
	"fmt"
	"slices"
	"sync"
)

// entry is implemented by every catalogued type.
type entry interface {
	Persona | Scenario | PitchLength
}

// table is an ordered, id-indexed list. Lookups return copies.
type table[T entry] struct {
	items []T
	index map[string]int
}

func newTable[T entry](items []T, id func(T) string) table[T] {
	t := table[T]{index: make(map[string]int, len(items))}
	for _, it := range items {
		t.put(it, id(it))
	}
	return t
}

// put replaces the entry with the same id in place or appends a new one.
func (t *table[T]) put(it T, id string) {
	if i, ok := t.index[id]; ok {
		t.items[i] = it
		return
	}
	t.index[id] = len(t.items)
	t.items = append(t.items, it)
}

func (t table[T]) get(id string) (T, bool) {
	i, ok := t.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.items[i], true
}

func (t table[T]) all() []T { return slices.Clone(t.items) }

func (t table[T]) clone(id func(T) string) table[T] { return newTable(t.items, id) }

func personaID(p Persona) string { return p.ID }
func scenarioID(s Scenario) string { return s.ID }
func pitchLengthID(pl PitchLength) string { return pl.ID }

// Catalog is an immutable registry of personas, scenarios and pitch lengths.
// Iteration order is registration order.
type Catalog struct {
	personas     table[Persona]
	scenarios    table[Scenario]
	pitchLengths table[PitchLength]
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the process-wide catalog of built-in entries.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat = &Catalog{
			personas:     newTable(builtinPersonas, personaID),
			scenarios:    newTable(builtinScenarios, scenarioID),
			pitchLengths: newTable(builtinPitchLengths, pitchLengthID),
		}
	})
	return defaultCat
}

// Persona looks up a persona by id.
func (c *Catalog) Persona(id string) (Persona, bool) { return c.personas.get(id) }

// Scenario looks up a scenario by id.
func (c *Catalog) Scenario(id string) (Scenario, bool) {
	s, ok := c.scenarios.get(id)
	if ok {
		s.Objectives = slices.Clone(s.Objectives)
	}
	return s, ok
}

// PitchLength looks up a pitch length by id.
func (c *Catalog) PitchLength(id string) (PitchLength, bool) { return c.pitchLengths.get(id) }

// Personas returns all personas in registration order.
func (c *Catalog) Personas() []Persona { return c.personas.all() }

// Scenarios returns all scenarios in registration order.
func (c *Catalog) Scenarios() []Scenario {
	out := c.scenarios.all()
	for i := range out {
		out[i].Objectives = slices.Clone(out[i].Objectives)
	}
	return out
}

// PitchLengths returns all pitch lengths in registration order.
func (c *Catalog) PitchLengths() []PitchLength { return c.pitchLengths.all() }

// Merge returns a new catalog with the entries of f laid over c. An entry
// whose id already exists replaces it in place; new ids are appended. The
// result is validated as a whole. c is not modified.
func (c *Catalog) Merge(f *File) (*Catalog, error) {
	out := &Catalog{
		personas:     c.personas.clone(personaID),
		scenarios:    c.scenarios.clone(scenarioID),
		pitchLengths: c.pitchLengths.clone(pitchLengthID),
	}
	if f != nil {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: merge: %w", err)
		}
		for _, p := range f.Personas {
			out.personas.put(p, p.ID)
		}
		for _, s := range f.Scenarios {
			s.Objectives = slices.Clone(s.Objectives)
			out.scenarios.put(s, s.ID)
		}
		for _, pl := range f.PitchLengths {
			out.pitchLengths.put(pl, pl.ID)
		}
	}
	return out, nil
}
