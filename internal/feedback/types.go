// Package feedback turns a model's free-text coaching reply into structured,
// score-bearing results.
//
// Parsing never fails. A reply is first tried as a strict JSON document; if
// that does not fit, the marker-scanning heuristic looks for SCORE:, FEEDBACK:
// and the pitch section markers; whatever is still missing degrades to a
// documented default. The [Method] returned alongside each result says which
// path produced it.
package feedback

// Method identifies how a reply was parsed.
type Method string

const (
	// MethodStrict means the reply was a complete JSON document.
	MethodStrict Method = "strict"

	// MethodHeuristic means at least one expected marker was found by line scanning.
	MethodHeuristic Method = "heuristic"

	// MethodFallback means no expected marker was found, or a parsed score was
	// out of range and replaced by its default.
	MethodFallback Method = "fallback"
)

// SessionFeedback is the score and critique of a finished conversation.
type SessionFeedback struct {
	Score       int      `json:"score"`
	Feedback    []string `json:"feedback"`
	RawFeedback string   `json:"rawFeedback"`
}

// InRange reports whether the score lies in [0,100].
func (f SessionFeedback) InRange() bool { return inRange(f.Score) }

// Criteria holds the five pitch sub-scores.
type Criteria struct {
	Clarity        int `json:"clarity"`
	Persuasiveness int `json:"persuasiveness"`
	Structure      int `json:"structure"`
	TimeManagement int `json:"timeManagement"`
	Impact         int `json:"impact"`
}

// Justifications holds one sentence per pitch criterion.
type Justifications struct {
	Clarity        string `json:"clarity"`
	Persuasiveness string `json:"persuasiveness"`
	Structure      string `json:"structure"`
	TimeManagement string `json:"timeManagement"`
	Impact         string `json:"impact"`
}

// PitchFeedback is the score and critique of a one-shot pitch.
type PitchFeedback struct {
	Score                  int            `json:"score"`
	Feedback               []string       `json:"feedback"`
	RawFeedback            string         `json:"rawFeedback"`
	Criteria               Criteria       `json:"criteria"`
	CriteriaJustifications Justifications `json:"criteriaJustifications"`
}

// InRange reports whether the overall score and every criterion lie in [0,100].
func (f PitchFeedback) InRange() bool {
	c := f.Criteria
	return inRange(f.Score) && inRange(c.Clarity) && inRange(c.Persuasiveness) &&
		inRange(c.Structure) && inRange(c.TimeManagement) && inRange(c.Impact)
}

func inRange(score int) bool { return score >= 0 && score <= 100 }

// criterion binds a pitch label to its slots in Criteria and Justifications.
type criterion struct {
	label string
	score func(*Criteria) *int
	just  func(*Justifications) *string
}

// criteria is the fixed label order used by the pitch prompt.
var criteria = []criterion{
	{"Clarity", func(c *Criteria) *int { return &c.Clarity }, func(j *Justifications) *string { return &j.Clarity }},
	{"Persuasiveness", func(c *Criteria) *int { return &c.Persuasiveness }, func(j *Justifications) *string { return &j.Persuasiveness }},
	{"Structure", func(c *Criteria) *int { return &c.Structure }, func(j *Justifications) *string { return &j.Structure }},
	{"Time Management", func(c *Criteria) *int { return &c.TimeManagement }, func(j *Justifications) *string { return &j.TimeManagement }},
	{"Impact", func(c *Criteria) *int { return &c.Impact }, func(j *Justifications) *string { return &j.Impact }},
}
