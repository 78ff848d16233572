package voice

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/MrWong99/salespractice/pkg/provider/tts"
)

// DefaultSimilarity is the minimum Jaro-Winkler score for a name match.
const DefaultSimilarity = 0.88

// Candidate is one voice available on some platform.
type Candidate struct {
	ID       string
	Name     string
	Language string
	Local    bool
}

// Preference is what a persona would like to sound like.
type Preference struct {
	ID       string
	Names    []string
	Language string
}

// Rule is one step of the selection chain.
type Rule struct {
	Name string

	// PerName makes the selector evaluate the rule once per preferred name,
	// in preference order, with Preference.Names narrowed to that one name.
	PerName bool

	Match func(Preference, Candidate) bool
}

// Selector evaluates its rules in order and returns the first matching
// candidate. The zero value has no rules; use [NewSelector].
type Selector struct {
	rules []Rule
}

// NewSelector returns a Selector with the given rules, or [DefaultRules]
// when none are given.
func NewSelector(rules ...Rule) *Selector {
	if len(rules) == 0 {
		rules = DefaultRules(DefaultSimilarity)
	}
	return &Selector{rules: rules}
}

// DefaultRules returns the standard chain: exact ID, similar name, local
// voice in the preferred language, then any voice in the preferred language.
func DefaultRules(threshold float64) []Rule {
	return []Rule{
		{Name: "id", Match: func(p Preference, c Candidate) bool {
			return p.ID != "" && strings.EqualFold(p.ID, c.ID)
		}},
		{Name: "name", PerName: true, Match: func(p Preference, c Candidate) bool {
			if len(p.Names) == 0 {
				return false
			}
			return similarName(p.Names[0], c.Name, threshold) ||
				strings.Contains(strings.ToLower(c.Language), strings.ToLower(p.Names[0]))
		}},
		{Name: "local-language", Match: func(p Preference, c Candidate) bool {
			return c.Local && languageMatch(p.Language, c.Language)
		}},
		{Name: "language", Match: func(p Preference, c Candidate) bool {
			return languageMatch(p.Language, c.Language)
		}},
	}
}

// Select returns the first candidate matched by the chain and the name of the
// rule that matched. When no rule matches, the first candidate is returned
// with rule "first". ok is false only for an empty catalogue.
func (s *Selector) Select(p Preference, catalogue []Candidate) (c Candidate, rule string, ok bool) {
	if len(catalogue) == 0 {
		return Candidate{}, "", false
	}
	for _, r := range s.rules {
		prefs := []Preference{p}
		if r.PerName {
			prefs = prefs[:0]
			for _, n := range p.Names {
				prefs = append(prefs, Preference{ID: p.ID, Names: []string{n}, Language: p.Language})
			}
		}
		for _, sub := range prefs {
			for _, cand := range catalogue {
				if r.Match(sub, cand) {
					return cand, r.Name, true
				}
			}
		}
	}
	return catalogue[0], "first", true
}

// ForPersona chooses a hosted voice for personaID from voices. With an empty
// catalogue the persona's default voice ID is returned. SpeedFactor is always
// set from the persona tuning.
func (s *Selector) ForPersona(personaID string, voices []tts.VoiceProfile) tts.VoiceProfile {
	t := TuningFor(personaID)
	catalogue := make([]Candidate, len(voices))
	for i, v := range voices {
		catalogue[i] = Candidate{ID: v.ID, Name: v.Name, Language: v.Language}
	}

	pref := Preference{ID: t.VoiceID, Names: []string{t.VoiceName}, Language: "en"}
	c, _, ok := s.Select(pref, catalogue)
	if !ok {
		return tts.VoiceProfile{ID: t.VoiceID, Name: t.VoiceName, Language: "en", SpeedFactor: t.Speed}
	}
	for _, v := range voices {
		if v.ID == c.ID {
			v.SpeedFactor = t.Speed
			return v
		}
	}
	return tts.VoiceProfile{ID: c.ID, Name: c.Name, SpeedFactor: t.Speed}
}

// ForDevice chooses an on-device voice for personaID, using the mobile
// preference list when mobile is set.
func (s *Selector) ForDevice(personaID string, mobile bool, catalogue []Candidate) (Candidate, bool) {
	h := HintsFor(personaID)
	names := h.PreferredVoices
	if mobile {
		names = h.MobilePreferredVoices
	}
	c, _, ok := s.Select(Preference{Names: names, Language: h.FallbackLanguage}, catalogue)
	return c, ok
}

// similarName reports whether have is close to want, case-insensitively:
// have contains want (or its part before " - "), or the two score at least
// threshold on Jaro-Winkler.
func similarName(want, have string, threshold float64) bool {
	w, h := strings.ToLower(strings.TrimSpace(want)), strings.ToLower(strings.TrimSpace(have))
	if w == "" || h == "" {
		return false
	}
	base, _, _ := strings.Cut(w, " - ")
	if strings.Contains(h, w) || strings.Contains(h, base) {
		return true
	}
	return matchr.JaroWinkler(w, h, false) >= threshold
}

// languageMatch reports whether tag starts with the language prefix, e.g.
// "en-GB" for "en".
func languageMatch(prefix, tag string) bool {
	if prefix == "" || tag == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(tag), strings.ToLower(prefix))
}
