package drafter

import "fmt"

// Fixed strings shown in place of a draft when a submission fails.
const (
	ErrorMarker         = "❌ Error: "
	NetworkErrorMessage = "❌ Network error"
)

// Phase is the stage of the submission state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseShown
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseShown:
		return "shown"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the result pane state. Draft is set only in PhaseShown and Reason
// only in PhaseFailed.
type State struct {
	Phase  Phase
	Draft  string
	Reason string
}

func idle() State                { return State{Phase: PhaseIdle} }
func submitting() State          { return State{Phase: PhaseSubmitting} }
func shown(draft string) State   { return State{Phase: PhaseShown, Draft: draft} }
func failed(reason string) State { return State{Phase: PhaseFailed, Reason: reason} }

// Loading reports whether a request is in flight.
func (s State) Loading() bool {
	return s.Phase == PhaseSubmitting
}

// Copyable reports whether the result pane holds text, a draft or an error
// message, that can be copied.
func (s State) Copyable() bool {
	return s.Phase == PhaseShown || s.Phase == PhaseFailed
}

// Text is the string displayed in the result pane: the draft, the failure
// reason, or empty.
func (s State) Text() string {
	switch s.Phase {
	case PhaseShown:
		return s.Draft
	case PhaseFailed:
		return s.Reason
	default:
		return ""
	}
}

// ResponseError reports a response that did not carry a draft. Payload is the
// stringified response body.
type ResponseError struct {
	Payload string
}

func (e *ResponseError) Error() string {
	return "response has no draft: " + e.Payload
}
