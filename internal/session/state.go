package session

import "github.com/krancour/sweetshop/sdk/authn"

// State is an immutable snapshot of a storefront session.
type State struct {
	// User is the identity paired with Token. It is nil when unauthenticated
	// and also for a session restored from storage whose profile has not been
	// loaded yet.
	User *authn.User
	// Token is the bearer credential. It is empty when unauthenticated.
	Token string
	// Loading is true until the session has been restored from storage.
	Loading bool
}

// IsAuthenticated returns true if the session holds a credential.
func (s State) IsAuthenticated() bool {
	return s.Token != ""
}

// IsAdmin returns true if the session's user is known to hold the Admin
// role.
func (s State) IsAdmin() bool {
	return s.User != nil && s.User.IsAdmin()
}

// Verified returns true if the session's credential is paired with a user
// record returned by the API.
func (s State) Verified() bool {
	return s.IsAuthenticated() && s.User != nil
}
