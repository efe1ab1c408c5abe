// Package navigation names the places a storefront client can be sent to
// and the interface through which it is sent there. The session and access
// packages emit navigation commands; they never decide how a command is
// carried out.
package navigation

import "sync"

// Boundary is a navigation target.
type Boundary string

const (
	// Login is where unauthenticated users are sent.
	Login Boundary = "/login"
	// Register is where new users create an account.
	Register Boundary = "/register"
	// Home is the landing place after authentication.
	Home Boundary = "/"
	// Admin is the catalog management area.
	Admin Boundary = "/admin"
	// Unauthorized is where authenticated users who lack a required role are
	// sent.
	Unauthorized Boundary = Home
)

// Navigator carries out navigation commands.
type Navigator interface {
	Navigate(Boundary)
}

// NavigatorFunc adapts an ordinary function to the Navigator interface.
type NavigatorFunc func(Boundary)

// Navigate calls f(b).
func (f NavigatorFunc) Navigate(b Boundary) {
	f(b)
}

// Discard is a Navigator that ignores every command.
var Discard Navigator = NavigatorFunc(func(Boundary) {})

// Recorder is a Navigator that remembers every command it receives. It is
// safe for concurrent use.
type Recorder struct {
	mu         sync.Mutex
	boundaries []Boundary
}

func (r *Recorder) Navigate(b Boundary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boundaries = append(r.boundaries, b)
}

// Boundaries returns every Boundary navigated to, oldest first.
func (r *Recorder) Boundaries() []Boundary {
	r.mu.Lock()
	defer r.mu.Unlock()
	boundaries := make([]Boundary, len(r.boundaries))
	copy(boundaries, r.boundaries)
	return boundaries
}

// Last returns the most recent Boundary navigated to, if any.
func (r *Recorder) Last() (Boundary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.boundaries) == 0 {
		return "", false
	}
	return r.boundaries[len(r.boundaries)-1], true
}
