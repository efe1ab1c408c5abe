// Package session holds the state of a storefront session and drives its
// lifecycle: restoration from the token store, login, registration,
// logout, and teardown when the API rejects the session's credential.
//
// A Store is the single writer of session state. Consumers receive the
// Store explicitly and read immutable State snapshots from it, either on
// demand or by subscribing to changes.
package session

import (
	"context"
	"sync"

	"github.com/golang/glog"
	"github.com/krancour/sweetshop/internal/navigation"
	"github.com/krancour/sweetshop/internal/tokenstore"
	"github.com/krancour/sweetshop/sdk/authn"
	"github.com/krancour/sweetshop/sdk/restmachinery"
	"github.com/pkg/errors"
)

// ErrSuperseded is returned when an operation completes after the session
// it was started against was terminated or restored, or, for LoadProfile,
// after the credential it was loading a profile for was rejected. Its
// result is discarded.
var ErrSuperseded = errors.New("session was superseded")

// ErrUnauthenticated is returned by operations that require a credential
// when the session holds none.
var ErrUnauthenticated = errors.New("session is not authenticated")

// TokenStore is durable storage for the session's credential.
type TokenStore interface {
	Read() (string, bool)
	Write(token string)
	Clear()
}

// Listener is notified with the new State after every change. Listeners are
// called synchronously, one change at a time, while the Store holds its write
// lock. They must not change the Store and must not issue API requests
// through a client whose rejections are handled by the Store; a rejected
// request would call HandleRejection and deadlock.
type Listener func(State)

type registeredListener struct {
	id     int
	listen Listener
}

// Store owns a storefront session. It is safe for concurrent use.
type Store struct {
	sessions  authn.SessionsClient
	tokens    TokenStore
	navigator navigation.Navigator

	// writeMu serializes changes together with the notifications they cause
	writeMu   sync.Mutex
	mu        sync.RWMutex
	state     State
	epoch     uint64
	restored  bool
	listeners []registeredListener
	nextID    int
}

// NewStore returns a Store that has not been restored yet. Its State
// reports Loading until Restore is called.
func NewStore(
	sessions authn.SessionsClient,
	tokens TokenStore,
	navigator navigation.Navigator,
) *Store {
	if navigator == nil {
		navigator = navigation.Discard
	}
	return &Store{
		sessions:  sessions,
		tokens:    tokens,
		navigator: navigator,
		state: State{
			Loading: true,
		},
	}
}

// State returns a snapshot of the session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a listener for state changes and returns a function
// that unregisters it.
func (s *Store) Subscribe(listener Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(
		s.listeners,
		registeredListener{
			id:     id,
			listen: listener,
		},
	)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Restore seeds the session from the token store and ends the Loading
// phase. A persisted token yields an authenticated session with no user
// record; LoadProfile pairs it with one. Only the first call has any
// effect, and none at all if the session was already established or
// terminated.
func (s *Store) Restore() State {
	return s.update(func(state *State) bool {
		if s.restored {
			return false
		}
		s.restored = true
		s.epoch++
		token, _ := s.tokens.Read()
		*state = State{
			Token: token,
		}
		if token != "" {
			glog.Infof("restored session with token %s", tokenstore.Redact(token))
		}
		return true
	})
}

// Authenticate logs in with the given credentials and, on success, adopts
// the resulting session. On failure the session is unchanged and the error,
// which carries the API's message, is returned.
func (s *Store) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (authn.User, error) {
	epoch := s.currentEpoch()
	result, err := s.sessions.Login(ctx, email, password)
	if err != nil {
		return authn.User{}, err
	}
	if err = s.adopt(epoch, result); err != nil {
		return authn.User{}, err
	}
	return result.User, nil
}

// Register creates an account with the given credentials and, on success,
// adopts the resulting session. Failures are handled as for Authenticate.
func (s *Store) Register(
	ctx context.Context,
	email string,
	password string,
) (authn.User, error) {
	epoch := s.currentEpoch()
	result, err := s.sessions.Register(ctx, email, password)
	if err != nil {
		return authn.User{}, err
	}
	if err = s.adopt(epoch, result); err != nil {
		return authn.User{}, err
	}
	return result.User, nil
}

// Terminate ends the session and removes the persisted token. It cannot
// fail and may be called any number of times.
func (s *Store) Terminate() {
	s.update(func(state *State) bool {
		s.restored = true
		s.epoch++
		s.tokens.Clear()
		wasAuthenticated := state.IsAuthenticated()
		*state = State{}
		if wasAuthenticated {
			glog.Infof("session terminated")
		}
		return true
	})
}

// LoadProfile fetches the user record for the session's credential and
// pairs it with the session.
func (s *Store) LoadProfile(ctx context.Context) (authn.User, error) {
	s.mu.RLock()
	epoch, token := s.epoch, s.state.Token
	s.mu.RUnlock()
	if token == "" {
		return authn.User{}, ErrUnauthenticated
	}
	user, err := s.sessions.WhoAmI(ctx)
	if err != nil {
		return authn.User{}, err
	}
	var superseded bool
	s.update(func(state *State) bool {
		if s.epoch != epoch || state.Token != token {
			superseded = true
			return false
		}
		u := user
		state.User = &u
		return true
	})
	if superseded {
		return authn.User{}, ErrSuperseded
	}
	return user, nil
}

// HandleRejection tears the session down when the API rejects its
// credential and sends the user to the login boundary. Rejections of a
// credential other than the one the session holds are ignored. It is
// meant to be registered as a request pipeline rejection listener.
func (s *Store) HandleRejection(rejection restmachinery.CredentialRejection) {
	var redirect bool
	s.update(func(state *State) bool {
		switch state.Token {
		case "":
			redirect = true
			return false
		case rejection.Token:
			// The epoch is left alone: a login in flight was not made with the
			// rejected credential and may still adopt its own
			redirect = true
			s.restored = true
			*state = State{}
			glog.Infof(
				"session with token %s was rejected by %s %s",
				tokenstore.Redact(rejection.Token),
				rejection.Method,
				rejection.Path,
			)
			return true
		default:
			glog.Infof(
				"ignoring rejection of token %s; session holds a different one",
				tokenstore.Redact(rejection.Token),
			)
			return false
		}
	})
	if redirect {
		s.navigator.Navigate(navigation.Login)
	}
}

func (s *Store) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *Store) adopt(epoch uint64, result authn.AuthResult) error {
	var superseded bool
	s.update(func(state *State) bool {
		if s.epoch != epoch {
			superseded = true
			return false
		}
		s.restored = true
		s.tokens.Write(result.Token)
		user := result.User
		*state = State{
			User:  &user,
			Token: result.Token,
		}
		glog.Infof(
			"adopted session for user %d with token %s",
			user.ID,
			tokenstore.Redact(result.Token),
		)
		return true
	})
	if superseded {
		glog.Infof(
			"discarding session with token %s; it was superseded",
			tokenstore.Redact(result.Token),
		)
		return ErrSuperseded
	}
	return nil
}

// update applies the given change under lock and, if it reports that the
// state changed, notifies listeners before returning. It returns the
// resulting State.
func (s *Store) update(change func(*State) bool) State {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	changed := change(&s.state)
	state := s.state
	listeners := make([]registeredListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	if changed {
		for _, l := range listeners {
			l.listen(state)
		}
	}
	return state
}
