package vault

// OutcomeKind is the three-way classification every vault call is reduced to
// before it drives any UI or navigation.
type OutcomeKind int

const (
	// OutcomeSuccess means the server answered with status "success".
	OutcomeSuccess OutcomeKind = iota
	// OutcomeDomainError means the server rejected the request for a
	// business reason (bad password, unknown user, missing file).
	OutcomeDomainError
	// OutcomeNetworkError means the transport failed or the response body
	// could not be parsed.
	OutcomeNetworkError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeDomainError:
		return "domain-error"
	case OutcomeNetworkError:
		return "network-error"
	}
	return "unknown"
}

// Server-declared step tokens of the forgot-password conversation. The client
// never infers the next step; it only reacts to these values.
const (
	StepUserID           = "user_id"
	StepSecurityQuestion = "security_question"
	StepResetPassword    = "reset_password"
)

// NetworkErrorMessage is the fixed fallback text shown for any transport
// failure. Raw transport errors are logged, never rendered.
const NetworkErrorMessage = "Network error"

// Outcome is the normalized result of a single vault call.
//
// Message holds the server-supplied error or confirmation text and may be
// empty; callers apply their own action-specific fallback. The remaining
// fields are populated only when the corresponding endpoint returns them.
type Outcome struct {
	Kind             OutcomeKind
	Message          string
	Redirect         string
	Step             string
	SecurityQuestion string
	UserID           string
	FileName         string
	Files            []string
}

// MessageOr returns the server message, or fallback if the server sent none.
func (o *Outcome) MessageOr(fallback string) string {
	if o.Message != "" {
		return o.Message
	}
	return fallback
}
