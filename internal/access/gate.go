// Package access decides whether a protected view may be shown for a given
// session. Decide is a pure function of session state; carrying out the
// redirect it calls for is a separate step.
package access

import (
	"context"

	"github.com/krancour/sweetshop/internal/navigation"
	"github.com/krancour/sweetshop/internal/session"
	"github.com/pkg/errors"
)

// ErrDenied is returned by Require when access is denied.
var ErrDenied = errors.New("access denied")

// Verdict is the outcome of an access decision.
type Verdict int

const (
	// Defer means the session has not been restored yet and no conclusive
	// decision can be made.
	Defer Verdict = iota
	// Allow means the view may be shown.
	Allow
	// Deny means the view must not be shown and the user should be
	// redirected.
	Deny
)

func (v Verdict) String() string {
	switch v {
	case Defer:
		return "defer"
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// Requirement describes what a protected view demands of a session.
// Authentication is always required.
type Requirement struct {
	RequireAdmin bool
}

// Decision is the result of applying a Requirement to session state.
// Redirect is set only when Verdict is Deny.
type Decision struct {
	Verdict  Verdict
	Redirect navigation.Boundary
}

// Decide applies the Requirement to the given State.
func Decide(state session.State, req Requirement) Decision {
	switch {
	case state.Loading:
		return Decision{Verdict: Defer}
	case !state.IsAuthenticated():
		return Decision{Verdict: Deny, Redirect: navigation.Login}
	case req.RequireAdmin && !state.IsAdmin():
		return Decision{Verdict: Deny, Redirect: navigation.Unauthorized}
	}
	return Decision{Verdict: Allow}
}

// Enforce issues the navigation command called for by the Decision and
// returns true if the view may be shown.
func Enforce(decision Decision, navigator navigation.Navigator) bool {
	if decision.Verdict == Deny && navigator != nil {
		navigator.Navigate(decision.Redirect)
	}
	return decision.Verdict == Allow
}

// StateSource is a session whose state can be read and observed.
// *session.Store satisfies it.
type StateSource interface {
	State() session.State
	Subscribe(session.Listener) func()
}

// Watch calls fn with the Decision for the current state and again after
// every state change, until the returned function is called.
func Watch(
	src StateSource,
	req Requirement,
	fn func(Decision),
) func() {
	stop := src.Subscribe(func(state session.State) {
		fn(Decide(state, req))
	})
	fn(Decide(src.State(), req))
	return stop
}

// Await waits until the session has been restored and returns the Decision
// for its state at that time. It returns the context's error if the context
// is done first.
func Await(
	ctx context.Context,
	src StateSource,
	req Requirement,
) (Decision, error) {
	restored := make(chan session.State, 1)
	unsubscribe := src.Subscribe(func(state session.State) {
		if state.Loading {
			return
		}
		select {
		case restored <- state:
		default:
		}
	})
	defer unsubscribe()
	if state := src.State(); !state.Loading {
		return Decide(state, req), nil
	}
	select {
	case state := <-restored:
		return Decide(state, req), nil
	case <-ctx.Done():
		return Decision{Verdict: Defer}, ctx.Err()
	}
}

// Require awaits a Decision, enforces it, and returns ErrDenied if access
// was not allowed.
func Require(
	ctx context.Context,
	src StateSource,
	req Requirement,
	navigator navigation.Navigator,
) error {
	decision, err := Await(ctx, src, req)
	if err != nil {
		return errors.Wrap(err, "error waiting for session restoration")
	}
	if !Enforce(decision, navigator) {
		return ErrDenied
	}
	return nil
}
