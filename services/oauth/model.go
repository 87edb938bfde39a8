package oauth

import "github.com/MarcGrol/agentstudio/services/session"

// FlowState is the position of one browser tab in the sign-in flow.
type FlowState string

const (
	FlowAnonymous          FlowState = "anonymous"
	FlowAwaitingRedirect   FlowState = "awaiting_redirect"
	FlowProcessingCallback FlowState = "processing_callback"
	FlowAuthenticated      FlowState = "authenticated"
	FlowRejected           FlowState = "rejected"
	FlowFailed             FlowState = "failed"
)

type CallbackOutcome string

const (
	OutcomeSkipped       CallbackOutcome = "skipped"
	OutcomeProviderError CallbackOutcome = "provider-error"
	OutcomeNotACallback  CallbackOutcome = "not-a-callback"
	OutcomeRejected      CallbackOutcome = "rejected"
	OutcomeFailed        CallbackOutcome = "failed"
	OutcomeAuthenticated CallbackOutcome = "authenticated"
)

const (
	genericFailureAlert = "Login failed. Please try again."
	providerErrorPrefix = "LinkedIn login failed: "
)

type CallbackResult struct {
	Outcome CallbackOutcome
	// Alert is shown to the user, empty for silent outcomes
	Alert string
	User  session.User
}

func (r CallbackResult) FlowState() FlowState {
	switch r.Outcome {
	case OutcomeAuthenticated:
		return FlowAuthenticated
	case OutcomeRejected:
		return FlowRejected
	case OutcomeFailed, OutcomeProviderError:
		return FlowFailed
	case OutcomeSkipped:
		return FlowProcessingCallback
	default:
		return FlowAnonymous
	}
}

type loginPageInfo struct {
	ProviderName string
	State        FlowState
	Alert        string
}
