package feedback

// Placeholders written into justification slots the reply did not fill.
const (
	// NoJustification marks a single missing justification line.
	NoJustification = "No justification provided."

	// MissingJustifications replaces every placeholder when even the first
	// criterion has none, signalling the whole section was absent.
	MissingJustifications = "Justification section missing from the analysis."
)

// Policy holds the editorial defaults applied when a reply lacks a value.
type Policy struct {
	// DefaultScore is the conversation score and pitch overall score used
	// when no score can be extracted.
	DefaultScore int

	// DefaultCriterionScore is used for each pitch criterion without a line.
	DefaultCriterionScore int
}

// DefaultPolicy returns the low defaults: unparseable output tends to come
// from degenerate input.
func DefaultPolicy() Policy {
	return Policy{DefaultScore: 25, DefaultCriterionScore: 25}
}

// fallbackConversation is used when a conversation reply has no bullets.
func fallbackConversation() []string {
	return []string{
		"Failed to extract meaningful feedback from conversation analysis",
		"This suggests the conversation was too brief or unfocused to evaluate",
		"Need significantly more substantive interaction with the customer",
		"Try having a complete conversation before expecting useful feedback",
	}
}

// fallbackPitch is used when a pitch reply has no bullets.
func fallbackPitch() []string {
	return []string{
		"Failed to extract meaningful feedback from the pitch analysis",
		"This usually means the pitch was too short or unfocused to evaluate",
		"Open with a clear hook, then cover the problem, your solution, and the benefits",
		"Use most of the allotted time instead of stopping early or running long",
		"Record a complete pitch before expecting useful feedback",
	}
}
