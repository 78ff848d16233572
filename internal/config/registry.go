package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/MrWong99/salespractice/pkg/provider/llm"
	"github.com/MrWong99/salespractice/pkg/provider/stt"
	"github.com/MrWong99/salespractice/pkg/provider/tts"
)

// ErrProviderNotRegistered is returned by the Create methods when no factory
// exists for the requested name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Factory builds a provider of type P from its config entry.
type Factory[P any] func(ProviderEntry) (P, error)

// family is the factory table for one provider kind.
type family[P any] struct {
	kind      string
	factories map[string]Factory[P]
}

func newFamily[P any](kind string) family[P] {
	return family[P]{kind: kind, factories: make(map[string]Factory[P])}
}

func (f family[P]) names() []string {
	return slices.Sorted(maps.Keys(f.factories))
}

// Registry maps provider names to factories for the llm, stt and tts kinds.
// It is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	llm family[llm.Provider]
	stt family[stt.Provider]
	tts family[tts.Provider]
}

// NewRegistry returns an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		llm: newFamily[llm.Provider]("llm"),
		stt: newFamily[stt.Provider]("stt"),
		tts: newFamily[tts.Provider]("tts"),
	}
}

// RegisterLLM registers an LLM factory under name, replacing any earlier one.
func (r *Registry) RegisterLLM(name string, f Factory[llm.Provider]) { register(r, r.llm, name, f) }

// RegisterSTT registers a speech-to-text factory under name.
func (r *Registry) RegisterSTT(name string, f Factory[stt.Provider]) { register(r, r.stt, name, f) }

// RegisterTTS registers a text-to-speech factory under name.
func (r *Registry) RegisterTTS(name string, f Factory[tts.Provider]) { register(r, r.tts, name, f) }

// CreateLLM builds the LLM provider named by entry.Name. An unknown name
// yields an error wrapping [ErrProviderNotRegistered] that lists the
// registered alternatives.
func (r *Registry) CreateLLM(entry ProviderEntry) (llm.Provider, error) {
	return create(r, r.llm, entry)
}

// CreateSTT builds the speech-to-text provider named by entry.Name.
func (r *Registry) CreateSTT(entry ProviderEntry) (stt.Provider, error) {
	return create(r, r.stt, entry)
}

// CreateTTS builds the text-to-speech provider named by entry.Name.
func (r *Registry) CreateTTS(entry ProviderEntry) (tts.Provider, error) {
	return create(r, r.tts, entry)
}

// Names reports the registered provider names per kind, sorted.
func (r *Registry) Names() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string][]string{
		r.llm.kind: r.llm.names(),
		r.stt.kind: r.stt.names(),
		r.tts.kind: r.tts.names(),
	}
}

func register[P any](r *Registry, f family[P], name string, factory Factory[P]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.factories[name] = factory
}

func create[P any](r *Registry, f family[P], entry ProviderEntry) (P, error) {
	r.mu.RLock()
	factory, ok := f.factories[entry.Name]
	known := f.names()
	r.mu.RUnlock()
	if !ok {
		var zero P
		return zero, fmt.Errorf("%w: %s/%q (registered: %s)",
			ErrProviderNotRegistered, f.kind, entry.Name, strings.Join(known, ", "))
	}
	p, err := factory(entry)
	if err != nil {
		var zero P
		return zero, fmt.Errorf("config: create %s/%s: %w", f.kind, entry.Name, err)
	}
	return p, nil
}

// OptString returns opts[key] when it holds a string, "" otherwise.
func OptString(opts map[string]any, key string) string {
	s, _ := opts[key].(string)
	return s
}
