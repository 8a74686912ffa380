// Package guard maps an AuthStatus onto an access decision and enforces it
// on admin routes.
package guard

import (
	"chambers/internal/auth/models"
)

// Decision is the guard's verdict for a request.
type Decision int

const (
	// DecisionLoading means the status is not settled yet; the caller
	// should ask the client to retry rather than deny outright.
	DecisionLoading Decision = iota
	// DecisionUnauthorized means no identity was presented; send the
	// client to the login page.
	DecisionUnauthorized
	// DecisionDenied means the identity is valid but carries no admin
	// grant. This is a terminal refusal, not a retryable failure.
	DecisionDenied
	// DecisionFailed means resolution itself failed; the client may retry.
	DecisionFailed
	// DecisionAuthorized admits the request.
	DecisionAuthorized
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionUnauthorized:
		return "unauthorized"
	case DecisionDenied:
		return "denied"
	case DecisionFailed:
		return "failed"
	case DecisionAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Evaluate maps each authorization state onto exactly one decision.
// A missing grant is a denial, never a failure; only resolution errors
// produce DecisionFailed.
func Evaluate(status models.AuthStatus) Decision {
	switch status.State {
	case models.StateLoading:
		return DecisionLoading
	case models.StateUnauthenticated:
		return DecisionUnauthorized
	case models.StateAuthenticatedNoRole:
		return DecisionDenied
	case models.StateAuthenticatedWithRole:
		return DecisionAuthorized
	default:
		return DecisionFailed
	}
}
