// Package catalog holds the vocabulary of a practice session: the customer
// personas, the sales scenarios, and the pitch lengths a user can pick, plus
// the records a session produces (exchanges, pitch sessions, research notes).
//
// The built-in entries are available through [Default]. Operators may extend
// or override them with a YAML file ([LoadFile]) merged on top of the
// built-ins. A [Catalog] is immutable after construction and safe for
// concurrent use.
package catalog

// Persona is a simulated customer the salesperson talks to.
type Persona struct {
	// ID is the stable lookup key (e.g., "skeptical_steve").
	ID string `yaml:"id" json:"id"`

	// Name is the display name, also used as the speaker label in transcripts.
	Name string `yaml:"name" json:"name"`

	// Description is a one-line summary shown in the persona picker.
	Description string `yaml:"description" json:"description"`

	// Avatar is a single glyph shown next to the name.
	Avatar string `yaml:"avatar" json:"avatar"`

	// SystemPrompt is the behavioural instruction block for the model.
	SystemPrompt string `yaml:"system_prompt" json:"systemPrompt"`
}

// Scenario is the situation a conversation takes place in.
type Scenario struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`

	// InitialContext tells the persona what kind of call this is.
	InitialContext string `yaml:"initial_context" json:"initialContext"`

	// Objectives are the goals the salesperson is judged against, in order.
	Objectives []string `yaml:"objectives" json:"objectives"`
}

// PitchLength is an allotted time budget for a one-shot pitch.
type PitchLength struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	// Duration is the allotted time in seconds.
	Duration int `yaml:"duration" json:"duration"`

	Description string `yaml:"description" json:"description"`
}

// Exchange is one turn of a conversation. Either side may be empty: the
// opening turn has no user utterance.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// PitchSession is a single uninterrupted pitch recording and its context.
// It is not modified after creation.
type PitchSession struct {
	Persona     Persona     `json:"persona"`
	PitchLength PitchLength `json:"pitchLength"`
	Transcript  string      `json:"transcript"`

	// Duration is the actual length of the pitch in seconds.
	Duration float64 `json:"duration"`

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// TimeRatio returns actual duration divided by allotted duration, or 0 when
// the allotted duration is not positive.
func (ps PitchSession) TimeRatio() float64 {
	if ps.PitchLength.Duration <= 0 {
		return 0
	}
	return ps.Duration / float64(ps.PitchLength.Duration)
}

// ResearchData is optional background gathered before a session and injected
// into the persona prompt.
type ResearchData struct {
	Query     string   `json:"query"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Sources   []string `json:"sources"`

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}
