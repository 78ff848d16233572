package prompt

import (
	"fmt"
	"strings"

	"github.com/MrWong99/salespractice/internal/catalog"
)

// Pitch time-usage bounds. Outside [UnderTimeRatio, OverTimeRatio] the model
// is told to penalise time management.
const (
	UnderTimeRatio = 0.5
	OverTimeRatio  = 1.2
)

// scoreBand is one row of the rubric embedded in feedback prompts.
type scoreBand struct {
	lo, hi int
	label  string
}

var conversationBands = []scoreBand{
	{0, 9, "No real attempt. Silence, gibberish, or a single greeting"},
	{10, 19, "Token effort. One or two generic lines with no discovery or value"},
	{20, 29, "Poor. Generic pitch, ignored the customer's questions and personality"},
	{30, 39, "Weak. Some relevant content but no adaptation to the persona"},
	{40, 49, "Below average. Addressed a few concerns but missed the scenario objectives"},
	{50, 59, "Average. Covered the basics, handled some objections, no clear next step"},
	{60, 69, "Competent. Adapted to the persona and met at least half of the objectives"},
	{70, 79, "Good. Clear value, solid objection handling, secured interest"},
	{80, 89, "Very good. Tailored, specific, confident, and moved the deal forward"},
	{90, 100, "Exceptional. Would convince this exact customer in real life"},
}

var pitchBands = []scoreBand{
	{0, 9, "No pitch. Silence, filler, or unrelated speech"},
	{10, 19, "A sentence or two with no problem, solution, or ask"},
	{20, 29, "Rambling or generic. No structure and nothing aimed at this customer"},
	{30, 39, "Some substance but disorganised and badly timed"},
	{40, 49, "Recognisable pitch with major gaps in structure or relevance"},
	{50, 59, "Average. Problem and solution present, weak benefits or close"},
	{60, 69, "Competent. Clear structure, reasonable timing, some persona fit"},
	{70, 79, "Good. Persuasive, well-timed, speaks to the customer's priorities"},
	{80, 89, "Very good. Tight, specific, memorable, strong call to action"},
	{90, 100, "Exceptional. Polished, perfectly timed, irresistible for this customer"},
}

func writeBands(b *strings.Builder, bands []scoreBand) {
	for _, band := range bands {
		fmt.Fprintf(b, "- %d-%d: %s\n", band.lo, band.hi, band.label)
	}
}

// ConversationFeedback builds the single-message prompt that asks the model to
// score a finished conversation. The reply is expected as a SCORE: line and a
// FEEDBACK: section of exactly four bullets.
func ConversationFeedback(history []catalog.Exchange, p catalog.Persona, s catalog.Scenario) string {
	var b strings.Builder

	b.WriteString("You are a demanding sales coach. Analyze this sales conversation and score it honestly. Do not inflate scores.\n\n")
	fmt.Fprintf(&b, "SCENARIO: %s - %s\n", s.Name, s.Description)
	fmt.Fprintf(&b, "CUSTOMER PERSONA: %s - %s\n\n", p.Name, p.Description)

	if len(s.Objectives) > 0 {
		b.WriteString("SCENARIO OBJECTIVES:\n")
		for i, obj := range s.Objectives {
			fmt.Fprintf(&b, "%d. %s\n", i+1, obj)
		}
		b.WriteString("\n")
	}

	b.WriteString("CONVERSATION TRANSCRIPT:\n")
	b.WriteString(Transcript(history, p.Name))
	b.WriteString("\n\n")

	b.WriteString("SCORING BANDS:\n")
	writeBands(&b, conversationBands)
	b.WriteString("\n")

	fmt.Fprintf(&b, `JUDGE ON:
1. How well the salesperson adapted to the %s persona
2. Progress against each scenario objective in the %s scenario
3. Discovery: questions asked and listening shown
4. Objection handling with specifics rather than slogans
5. Clarity of value and of the proposed next step

PENALTY RULES:
- An empty or near-empty transcript scores 0-9
- One or two short exchanges score no higher than 19
- Generic, copy-paste responses that could be said to any customer score no higher than 39
- Ignoring the persona's explicit cues (price for a skeptic, time for a busy buyer, specifics for a technical buyer) costs at least 20 points
- Never award points for politeness alone

`, p.Name, s.Name)

	b.WriteString(`Respond in this exact format and nothing else:

SCORE: [integer from 0-100]

FEEDBACK:
• [The most important mistake and what to say instead]
• [A specific missed opportunity with an example line]
• [How well the persona's cues were handled]
• [One concrete thing to practice next time]

Exactly four bullets. Be specific, quote the transcript where possible, and avoid generic advice.`)
	return b.String()
}

// PitchFeedback builds the prompt that scores a one-shot pitch against the
// allotted time and the listening persona.
func PitchFeedback(ps catalog.PitchSession) string {
	var b strings.Builder

	ratio := ps.TimeRatio()

	b.WriteString("You are a demanding pitch coach. Score this recorded sales pitch honestly. Do not inflate scores.\n\n")
	fmt.Fprintf(&b, "CUSTOMER PERSONA: %s - %s\n", ps.Persona.Name, ps.Persona.Description)
	fmt.Fprintf(&b, "PITCH FORMAT: %s (%d seconds allotted)\n", ps.PitchLength.Name, ps.PitchLength.Duration)
	fmt.Fprintf(&b, "ACTUAL DURATION: %.0f seconds\n", ps.Duration)
	fmt.Fprintf(&b, "TIME USAGE: %.2f of allotted time (%.0f%%)\n\n", ratio, ratio*100)

	b.WriteString("PITCH TRANSCRIPT:\n")
	b.WriteString(ps.Transcript)
	b.WriteString("\n\n")

	b.WriteString("SCORING BANDS (apply to the overall score and to each criterion):\n")
	writeBands(&b, pitchBands)
	b.WriteString("\n")

	fmt.Fprintf(&b, `CRITERIA:
- Clarity: is the message easy to follow and free of filler
- Persuasiveness: does it give %s a reason to care
- Structure: hook, problem, solution, benefits, call to action
- Time Management: use of the %d seconds allotted
- Impact: would this pitch be remembered and acted on

PENALTY RULES:
- An empty, near-empty, or off-topic transcript scores 0-9 on every criterion
- Using less than %.0f%% of the allotted time caps Time Management at 30 and Structure at 40
- Running over %.0f%% of the allotted time caps Time Management at 30
- A pitch that ignores what %s cares about caps Persuasiveness and Impact at 40

`, ps.Persona.Name, ps.PitchLength.Duration, UnderTimeRatio*100, OverTimeRatio*100, ps.Persona.Name)

	b.WriteString(`Respond in this exact format and nothing else:

OVERALL SCORE: [integer from 0-100]

CRITERIA SCORES:
Clarity: [0-100]
Persuasiveness: [0-100]
Structure: [0-100]
Time Management: [0-100]
Impact: [0-100]

CRITERIA JUSTIFICATIONS:
Clarity Justification: [one sentence]
Persuasiveness Justification: [one sentence]
Structure Justification: [one sentence]
Time Management Justification: [one sentence]
Impact Justification: [one sentence]

FEEDBACK:
• [The biggest failure in this pitch]
• [The missing or weakest structural element]
• [Time management critique with the actual numbers]
• [How to better target this persona]
• [One concrete rewrite of the opening line]

Exactly five bullets. Be specific and quote the transcript where possible.`)
	return b.String()
}
