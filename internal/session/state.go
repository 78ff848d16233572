// Package session implements the practice-session state machine and an
// in-memory manager of concurrent sessions.
//
// A session moves through
//
//	research → mode-select → conversation-setup → conversation → feedback
//	                       ↘ pitch-setup        → pitch        → pitch-feedback
//
// and Reset returns it to research from anywhere. Each operation is only
// legal from its documented source state; anything else fails with
// [ErrInvalidTransition] and leaves the session untouched. Operations that
// call the model never change state when the call fails.
package session

import "errors"

// State is a step of the practice flow.
type State string

const (
	StateResearch          State = "research"
	StateModeSelect        State = "mode-select"
	StateConversationSetup State = "conversation-setup"
	StatePitchSetup        State = "pitch-setup"
	StateConversation      State = "conversation"
	StatePitch             State = "pitch"
	StateFeedback          State = "feedback"
	StatePitchFeedback     State = "pitch-feedback"
)

// Mode is the practice format chosen in mode-select.
type Mode string

const (
	ModeConversation Mode = "conversation"
	ModePitch        Mode = "pitch"
)

var (
	// ErrInvalidTransition means the operation is not legal in the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrIncompleteSelection means Start was called before every required
	// selection was made.
	ErrIncompleteSelection = errors.New("incomplete selection")

	// ErrUnknownOption means a persona, scenario, pitch length or mode ID is
	// not in the catalog.
	ErrUnknownOption = errors.New("unknown option")

	// ErrInvalidInput means an utterance or pitch submission failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means no session has the requested ID.
	ErrNotFound = errors.New("session not found")
)
