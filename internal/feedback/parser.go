package feedback

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Markers looked for by the line-scanning heuristic. Matching is case-sensitive.
const (
	markerScore          = "SCORE:"
	markerOverallScore   = "OVERALL SCORE:"
	markerFeedback       = "FEEDBACK:"
	markerCriteria       = "CRITERIA SCORES:"
	markerJustifications = "CRITERIA JUSTIFICATIONS:"
)

var digitRun = regexp.MustCompile(`\d+`)

// Parser extracts structured feedback from model replies. The zero value is
// not useful; construct with [NewParser]. A Parser is safe for concurrent use.
type Parser struct {
	policy Policy
}

// NewParser returns a Parser applying the given defaults.
func NewParser(p Policy) *Parser {
	return &Parser{policy: p}
}

// Policy returns the defaults this parser applies.
func (p *Parser) Policy() Policy { return p.policy }

// ── Conversation ─────────────────────────────────────────────────────────────

// ParseConversation extracts a score and bullet list from a reply to the
// conversation-feedback prompt. RawFeedback is always the input text.
func (p *Parser) ParseConversation(text string) (SessionFeedback, Method) {
	if fb, ok := strictConversation(text); ok {
		fb.RawFeedback = text
		return fb, MethodStrict
	}

	lines := nonBlankLines(text)
	fb := SessionFeedback{RawFeedback: text, Score: p.policy.DefaultScore}

	score, foundScore := scoreAfter(lines, markerScore)
	if foundScore {
		fb.Score = score
	}
	fb.Feedback = bulletsAfter(lines, markerFeedback)
	foundBullets := len(fb.Feedback) > 0
	if !foundBullets {
		fb.Feedback = fallbackConversation()
	}

	if !foundScore && !foundBullets {
		return fb, MethodFallback
	}
	return fb, MethodHeuristic
}

type strictConversationDoc struct {
	Score    *float64 `json:"score"`
	Feedback []string `json:"feedback"`
}

func strictConversation(text string) (SessionFeedback, bool) {
	var doc strictConversationDoc
	if !decodeStrict(text, &doc) {
		return SessionFeedback{}, false
	}
	score, ok := wholeNumber(doc.Score)
	if !ok {
		return SessionFeedback{}, false
	}
	items := cleanItems(doc.Feedback)
	if len(items) == 0 {
		return SessionFeedback{}, false
	}
	return SessionFeedback{Score: score, Feedback: items}, true
}

// ── Pitch ────────────────────────────────────────────────────────────────────

// ParsePitch extracts the overall score, five criterion scores, their
// justifications and a bullet list from a reply to the pitch-feedback prompt.
func (p *Parser) ParsePitch(text string) (PitchFeedback, Method) {
	if fb, ok := strictPitch(text); ok {
		fb.RawFeedback = text
		return fb, MethodStrict
	}

	lines := nonBlankLines(text)
	fb := PitchFeedback{RawFeedback: text, Score: p.policy.DefaultScore}
	found := false

	if score, ok := scoreAfter(lines, markerOverallScore); ok {
		fb.Score = score
		found = true
	}

	for _, c := range criteria {
		*c.score(&fb.Criteria) = p.policy.DefaultCriterionScore
		*c.just(&fb.CriteriaJustifications) = NoJustification
	}

	scores := section(lines, markerCriteria, markerJustifications, markerFeedback)
	for _, c := range criteria {
		if v, ok := labelledScore(scores, c.label); ok {
			*c.score(&fb.Criteria) = v
			found = true
		}
	}

	justs := section(lines, markerJustifications, markerFeedback)
	for _, c := range criteria {
		if v, ok := labelledJustification(justs, c.label); ok {
			*c.just(&fb.CriteriaJustifications) = v
			found = true
		}
	}
	markMissing(&fb.CriteriaJustifications)

	fb.Feedback = bulletsAfter(lines, markerFeedback)
	if len(fb.Feedback) > 0 {
		found = true
	} else {
		fb.Feedback = fallbackPitch()
	}

	if !found {
		return fb, MethodFallback
	}
	return fb, MethodHeuristic
}

type strictPitchDoc struct {
	Score        *float64 `json:"score"`
	OverallScore *float64 `json:"overallScore"`
	Feedback     []string `json:"feedback"`
	Criteria     *struct {
		Clarity        *float64 `json:"clarity"`
		Persuasiveness *float64 `json:"persuasiveness"`
		Structure      *float64 `json:"structure"`
		TimeManagement *float64 `json:"timeManagement"`
		Impact         *float64 `json:"impact"`
	} `json:"criteria"`
	CriteriaJustifications *Justifications `json:"criteriaJustifications"`
}

func strictPitch(text string) (PitchFeedback, bool) {
	var doc strictPitchDoc
	if !decodeStrict(text, &doc) || doc.Criteria == nil {
		return PitchFeedback{}, false
	}
	raw := doc.Score
	if raw == nil {
		raw = doc.OverallScore
	}
	var fb PitchFeedback
	var ok bool
	if fb.Score, ok = wholeNumber(raw); !ok {
		return PitchFeedback{}, false
	}
	c := doc.Criteria
	for _, pair := range []struct {
		dst *int
		src *float64
	}{
		{&fb.Criteria.Clarity, c.Clarity},
		{&fb.Criteria.Persuasiveness, c.Persuasiveness},
		{&fb.Criteria.Structure, c.Structure},
		{&fb.Criteria.TimeManagement, c.TimeManagement},
		{&fb.Criteria.Impact, c.Impact},
	} {
		if *pair.dst, ok = wholeNumber(pair.src); !ok {
			return PitchFeedback{}, false
		}
	}
	if fb.Feedback = cleanItems(doc.Feedback); len(fb.Feedback) == 0 {
		return PitchFeedback{}, false
	}
	if doc.CriteriaJustifications != nil {
		fb.CriteriaJustifications = *doc.CriteriaJustifications
	}
	for _, cr := range criteria {
		j := cr.just(&fb.CriteriaJustifications)
		if *j = strings.TrimSpace(*j); *j == "" {
			*j = NoJustification
		}
	}
	markMissing(&fb.CriteriaJustifications)
	return fb, true
}

// markMissing treats the whole justification section as absent when the
// first slot is unfilled: every unfilled slot gets [MissingJustifications].
func markMissing(js *Justifications) {
	if js.Clarity != NoJustification {
		return
	}
	for _, c := range criteria {
		if j := c.just(js); *j == NoJustification {
			*j = MissingJustifications
		}
	}
}

// ── Scanning helpers ─────────────────────────────────────────────────────────

// nonBlankLines splits text into lines and drops those that are empty after
// trimming. Returned lines keep their original (untrimmed) content.
func nonBlankLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := raw[:0]
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// scoreAfter returns the first digit run after marker on the first line
// containing it, so a numbered "1. SCORE: 72" reads as 72.
func scoreAfter(lines []string, marker string) (int, bool) {
	for _, l := range lines {
		if i := strings.Index(l, marker); i >= 0 {
			return firstNumber(l[i+len(marker):])
		}
	}
	return 0, false
}

// bulletsAfter collects bullet items from all lines following the first line
// containing marker.
func bulletsAfter(lines []string, marker string) []string {
	start := -1
	for i, l := range lines {
		if strings.Contains(l, marker) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}
	var out []string
	for _, l := range lines[start:] {
		if item, ok := bullet(l); ok {
			out = append(out, item)
		}
	}
	return out
}

// section returns the lines after the first line containing start, up to but
// excluding the first later line containing any of the end markers.
func section(lines []string, start string, ends ...string) []string {
	from := -1
	for i, l := range lines {
		if strings.Contains(l, start) {
			from = i + 1
			break
		}
	}
	if from < 0 {
		return nil
	}
	for i := from; i < len(lines); i++ {
		for _, e := range ends {
			if strings.Contains(lines[i], e) {
				return lines[from:i]
			}
		}
	}
	return lines[from:]
}

// labelledScore finds "<label>: <n>" in lines, tolerating a leading bullet
// and either case of the label.
func labelledScore(lines []string, label string) (int, bool) {
	for _, l := range lines {
		if rest, ok := afterLabel(l, label+":"); ok {
			if v, ok := firstNumber(rest); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// labelledJustification finds "<label> Justification: text" in lines and
// returns everything after the first colon.
func labelledJustification(lines []string, label string) (string, bool) {
	want := strings.ToLower(label + " Justification")
	for _, l := range lines {
		if !strings.Contains(strings.ToLower(l), want) {
			continue
		}
		_, text, ok := strings.Cut(l, ":")
		if !ok {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, true
		}
	}
	return "", false
}

func afterLabel(line, label string) (string, bool) {
	s := strings.TrimSpace(line)
	if item, ok := bullet(s); ok {
		s = item
	}
	if len(s) < len(label) || !strings.EqualFold(s[:len(label)], label) {
		return "", false
	}
	return s[len(label):], true
}

// bullet reports whether the trimmed line starts with "•" or "-" and returns
// the remainder with the marker stripped.
func bullet(line string) (string, bool) {
	s := strings.TrimSpace(line)
	r, size := utf8.DecodeRuneInString(s)
	if r != '•' && r != '-' {
		return "", false
	}
	item := strings.TrimSpace(s[size:])
	return item, item != ""
}

func firstNumber(s string) (int, bool) {
	m := digitRun.FindString(s)
	if m == "" {
		return 0, false
	}
	var v int
	for _, d := range m {
		v = v*10 + int(d-'0')
		if v > math.MaxInt32 {
			return math.MaxInt32, true
		}
	}
	return v, true
}

// ── Strict JSON helpers ──────────────────────────────────────────────────────

// decodeStrict decodes text as a single JSON object, accepting an optional
// Markdown code fence around it.
func decodeStrict(text string, dst any) bool {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			return false
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	if !strings.HasPrefix(s, "{") {
		return false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(dst); err != nil {
		return false
	}
	return !dec.More()
}

func wholeNumber(f *float64) (int, bool) {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) || *f != math.Trunc(*f) {
		return 0, false
	}
	if math.Abs(*f) > math.MaxInt32 {
		return 0, false
	}
	return int(*f), true
}

func cleanItems(items []string) []string {
	var out []string
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}
