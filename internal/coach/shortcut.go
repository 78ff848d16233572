package coach

import "github.com/MrWong99/salespractice/internal/feedback"

// Shortcut reasons, also used as metric attribute values.
const (
	ShortcutEmpty   = "empty"
	ShortcutMinimal = "minimal"
)

// MinExchanges is the fewest exchanges worth sending to the model.
const MinExchanges = 2

// shortcut returns the canned feedback for a history too short to analyse.
func shortcut(exchanges int) (feedback.SessionFeedback, string, bool) {
	switch {
	case exchanges == 0:
		return feedback.SessionFeedback{
			Score: 0,
			Feedback: []string{
				"Complete failure: No conversation attempted whatsoever",
				"You cannot learn sales without actually talking to the customer",
				"This is like showing up to a sales meeting and saying nothing",
				"Start over and actually engage in a real conversation",
			},
			RawFeedback: "SCORE: 0 - No conversation data available for analysis. Complete failure to engage.",
		}, ShortcutEmpty, true
	case exchanges < MinExchanges:
		return feedback.SessionFeedback{
			Score: 15,
			Feedback: []string{
				"Pathetically short conversation - barely tried to engage",
				"One or two sentences is not a sales conversation",
				"Real customers need more than surface-level interaction",
				"Practice having complete conversations, not just quick exchanges",
			},
			RawFeedback: "SCORE: 15 - Extremely minimal conversation. Insufficient effort to evaluate sales skills.",
		}, ShortcutMinimal, true
	default:
		return feedback.SessionFeedback{}, "", false
	}
}
