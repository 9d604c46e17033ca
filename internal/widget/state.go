package widget

// State is the submit button's lifecycle state.
type State int

// Button states. The label shown in the DOM is a projection of the state.
const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the state is waiting for the reset delay.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Disabled reports whether the control must reject clicks in this state.
func (s State) Disabled() bool {
	return s != Idle
}

// Labels holds the button text for each state.
type Labels struct {
	Idle       string
	Submitting string
	Succeeded  string
	Failed     string
}

// DefaultLabels returns the landing page's button text.
func DefaultLabels() Labels {
	return Labels{
		Idle:       "Request Booking",
		Submitting: "Requesting...",
		Succeeded:  "Request Sent!",
		Failed:     "Request Failed",
	}
}

// For returns the label rendered for s.
func (l Labels) For(s State) string {
	switch s {
	case Submitting:
		return l.Submitting
	case Succeeded:
		return l.Succeeded
	case Failed:
		return l.Failed
	}
	return l.Idle
}

// Parse maps observed button text back to a state. Used by the end-to-end checker,
// which can only see the DOM.
func (l Labels) Parse(text string) (State, bool) {
	switch text {
	case l.Idle:
		return Idle, true
	case l.Submitting:
		return Submitting, true
	case l.Succeeded:
		return Succeeded, true
	case l.Failed:
		return Failed, true
	}
	return Idle, false
}
