package form

// Phase is the controller's position in the submission lifecycle.
type Phase int

const (
	// PhaseIdle is the initial phase and the phase after Clear.
	PhaseIdle Phase = iota
	// PhaseSubmitting means a generation request is in flight.
	PhaseSubmitting
	// PhaseSucceeded means the last submission produced a reply.
	PhaseSucceeded
	// PhaseFailed means the last submission produced an error message.
	PhaseFailed
)

// String returns the human-readable name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseSubmitting:
		return "Submitting"
	case PhaseSucceeded:
		return "Succeeded"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
