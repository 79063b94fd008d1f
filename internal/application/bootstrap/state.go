package bootstrap

import "time"

// State is a step of the session bootstrap.
type State string

const (
	AwaitingEmail       State = "AwaitingEmail"
	RequestingOtp       State = "RequestingOtp"
	AwaitingCode        State = "AwaitingCode"
	VerifyingOtp        State = "VerifyingOtp"
	AddingUser          State = "AddingUser"
	RedirectingExternal State = "RedirectingExternal"
	Authenticated       State = "Authenticated"
	Failed              State = "Failed"
)

// Navigation is a route change, applied After the page is shown. External
// targets leave the portal.
type Navigation struct {
	To       string
	After    time.Duration
	External bool
}

// Outcome is the result of one bootstrap operation.
type Outcome struct {
	State   State
	Message string
	Err     error
	Next    *Navigation
}

// OK reports whether the operation did not fail.
func (o Outcome) OK() bool { return o.Err == nil && o.State != Failed }

func navigate(to string, after time.Duration) *Navigation {
	return &Navigation{To: to, After: after}
}
