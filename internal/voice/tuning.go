// Package voice picks the voice a persona speaks with.
//
// Selection is an ordered chain of [Rule] predicates evaluated against a
// catalogue of [Candidate] voices. The same chain serves hosted speech
// providers (through [Selector.ForPersona]) and on-device synthesis (through
// [Selector.ForDevice] and the [Hints] served to clients), so no rule depends
// on a particular platform's voice list.
package voice

// Tuning is the per-persona voice character.
type Tuning struct {
	// VoiceID is the preferred hosted voice identifier.
	VoiceID string `json:"voiceId"`

	// VoiceName is the preferred hosted voice display name, matched fuzzily
	// when the provider's IDs differ from VoiceID.
	VoiceName string `json:"voiceName"`

	// Speed is the hosted synthesis speed factor.
	Speed float64 `json:"speed"`

	// RateFactor and PitchFactor scale on-device speech rate and pitch.
	RateFactor  float64 `json:"rateFactor"`
	PitchFactor float64 `json:"pitchFactor"`
}

// defaultTuning applies to personas without an entry in tunings.
var defaultTuning = Tuning{VoiceID: "alloy", VoiceName: "Alloy", Speed: 1.0, RateFactor: 1.0, PitchFactor: 1.0}

// tunings gives each built-in persona a distinct voice: Steve is deep and
// slow, Betty quick and bright, Tom measured.
var tunings = map[string]Tuning{
	"skeptical_steve": {VoiceID: "onyx", VoiceName: "Onyx", Speed: 0.9, RateFactor: 0.85, PitchFactor: 0.9},
	"busy_betty":      {VoiceID: "nova", VoiceName: "Nova", Speed: 1.1, RateFactor: 1.1, PitchFactor: 1.1},
	"technical_tom":   {VoiceID: "echo", VoiceName: "Echo", Speed: 1.0, RateFactor: 0.95, PitchFactor: 0.95},
}

// TuningFor returns the tuning for personaID, or the neutral default.
func TuningFor(personaID string) Tuning {
	if t, ok := tunings[personaID]; ok {
		return t
	}
	return defaultTuning
}

// Hints tell an on-device synthesiser how to voice a persona.
type Hints struct {
	PreferredVoices       []string `json:"preferredVoices"`
	MobilePreferredVoices []string `json:"mobilePreferredVoices"`
	FallbackLanguage      string   `json:"fallbackLanguage"`
	Rate                  float64  `json:"rate"`
	MobileRate            float64  `json:"mobileRate"`
	Pitch                 float64  `json:"pitch"`
	Volume                float64  `json:"volume"`
}

const (
	desktopRate = 1.0
	mobileRate  = 0.9
	basePitch   = 1.0
	baseVolume  = 0.9
)

var (
	desktopVoices = []string{
		"Microsoft David - English (United States)",
		"Microsoft Zira - English (United States)",
		"Google US English",
		"Alex", "Samantha", "Daniel", "Karen", "Moira", "Tessa",
	}
	mobileVoices = []string{
		"Samantha", "Alex", "Karen", "Daniel",
		"Google US English", "Google English", "en-US", "en-GB",
	}
)

// HintsFor returns on-device synthesis hints for personaID.
func HintsFor(personaID string) Hints {
	t := TuningFor(personaID)
	return Hints{
		PreferredVoices:       append([]string(nil), desktopVoices...),
		MobilePreferredVoices: append([]string(nil), mobileVoices...),
		FallbackLanguage:      "en",
		Rate:                  desktopRate * t.RateFactor,
		MobileRate:            mobileRate * t.RateFactor,
		Pitch:                 basePitch * t.PitchFactor,
		Volume:                baseVolume,
	}
}
