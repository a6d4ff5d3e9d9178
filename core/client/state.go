package client

// State is a step of one Generate call. States are only ever entered in
// declaration order and none is revisited.
type State string

const (
	StateIdle              State = "idle"
	StateRequested         State = "requested"
	StateResponseReceived  State = "response_received"
	StateSanitized         State = "sanitized"
	StateExtractedFound    State = "extracted.found"
	StateExtractedNotFound State = "extracted.not_found"
	StateValidatedSuccess  State = "validated.success"
	StateValidatedFailure  State = "validated.failure"
)

// Terminal reports whether no further state follows s.
func (s State) Terminal() bool {
	return s == StateValidatedSuccess || s == StateValidatedFailure
}

// Outcomes reported on the generate counter.
const (
	OutcomeSuccess       = "success"
	OutcomeConfiguration = "configuration_error"
	OutcomeBackend       = "backend_error"
	OutcomeValidation    = "validation_error"
	OutcomePrompt        = "prompt_error"
)
