// Package wizard models the three-step visitor flow as one explicit state
// struct with a transition method per action, so invalid combinations (a
// result on the upload step, a dead-end loading screen) cannot be reached.
package wizard

import (
	"stairviz/internal/domain"
)

// Step is the visitor's position in the flow.
type Step int

const (
	StepUpload Step = 1
	StepStyle  Step = 2
	StepResult Step = 3
)

// String returns the step label used in API payloads and logs.
func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepStyle:
		return "style"
	case StepResult:
		return "result"
	}
	return "unknown"
}

// State is the wizard's complete control state. Direction only affects
// transition animation on the client, never data.
type State struct {
	Step      Step
	Direction int
	Loading   bool
	Error     string
	Result    *domain.GenerationResult
}

// NewState returns the initial Upload state.
func NewState() State {
	return State{Step: StepUpload}
}

// Paginate moves exactly one step forward or backward. The Result step can
// only be entered through Submit, so forward pagination stops at Style.
func (s State) Paginate(delta int) (State, error) {
	if delta != 1 && delta != -1 {
		return s, domain.ErrInvalidTransition
	}
	next := s.Step + Step(delta)
	if next < StepUpload || next > StepResult {
		return s, domain.ErrInvalidTransition
	}
	if delta > 0 && next == StepResult {
		return s, domain.ErrInvalidTransition
	}
	s.Step = next
	s.Direction = delta
	s.Loading = false
	s.Error = ""
	return s, nil
}

// JumpBack moves to a previously completed step via the step indicator.
// Forward jumps are disallowed.
func (s State) JumpBack(target Step) (State, error) {
	if target < StepUpload || target >= s.Step {
		return s, domain.ErrInvalidTransition
	}
	s.Step = target
	s.Direction = -1
	s.Loading = false
	s.Error = ""
	return s, nil
}

// Submit force-transitions to Result in its loading sub-state before the
// network call resolves. Only valid from Style.
func (s State) Submit() (State, error) {
	if s.Step != StepStyle {
		return s, domain.ErrInvalidTransition
	}
	s.Step = StepResult
	s.Direction = 1
	s.Loading = true
	s.Error = ""
	s.Result = nil
	return s, nil
}

// Resolve applies the generation outcome. Success stays on Result showing
// the image; any failure returns the visitor to Style with the message
// attached so they can retry without re-uploading.
func (s State) Resolve(result domain.GenerationResult) (State, error) {
	if s.Step != StepResult || !s.Loading {
		return s, domain.ErrInvalidTransition
	}
	s.Loading = false
	if result.Success {
		res := result
		s.Result = &res
		return s, nil
	}
	s.Step = StepStyle
	s.Direction = -1
	s.Error = result.Message
	s.Result = nil
	return s, nil
}

// Reset discards progress and returns to the initial Upload state.
func (s State) Reset() State {
	return NewState()
}
