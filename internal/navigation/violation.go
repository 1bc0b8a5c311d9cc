package navigation

// Kind is the closed set of reported problems.
type Kind string

const (
	KindBrokenLink                    Kind = "BrokenLink"
	KindMissingNavigation             Kind = "MissingNavigation"
	KindEmptyNavigation               Kind = "EmptyNavigation"
	KindWrongIndexTarget              Kind = "WrongIndexTarget"
	KindWrongPreviousTarget           Kind = "WrongPreviousTarget"
	KindForwardInBackwardSlot         Kind = "ForwardInBackwardSlot"
	KindMissingContinueControl        Kind = "MissingContinueControl"
	KindMissingStageCompletionControl Kind = "MissingStageCompletionControl"
	KindMissingPathFinishControl      Kind = "MissingPathFinishControl"
	KindInconsistentLinkType          Kind = "InconsistentLinkType"
)

// Advisory reports whether the kind is informational and does not fail a
// non-strict run.
func (k Kind) Advisory() bool {
	return k == KindInconsistentLinkType
}

// Sequencing reports whether the kind comes from the per-module navigation
// rules rather than link resolution or the navigation presence check.
func (k Kind) Sequencing() bool {
	switch k {
	case KindBrokenLink, KindMissingNavigation:
		return false
	default:
		return true
	}
}

// Violation is one reported problem. Target is set when the problem concerns
// a specific reference.
type Violation struct {
	File    string `json:"file" yaml:"file"`
	Kind    Kind   `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Target  string `json:"target,omitempty" yaml:"target,omitempty"`
}
