package restmachinery

import "sync"

// TokenSource is the credential store consulted by the pipeline. Read is
// invoked fresh for every outbound request. ClearIf must atomically remove
// the stored token only if it is the one given (or nothing is stored) and
// report whether the slot is now known to be free of the rejected credential.
type TokenSource interface {
	Read() (string, bool)
	ClearIf(token string) bool
}

// CredentialRejection describes an HTTP 401 observed by the pipeline after
// the rejected credential has been removed from the TokenSource.
type CredentialRejection struct {
	// Token is the credential that was attached to the rejected request. It is
	// empty if the request carried no credential.
	Token string
	// Method and Path identify the rejected request.
	Method string
	Path   string
	// RequestID is the X-Request-ID the request was sent with.
	RequestID string
	// Reason is the explanation supplied by the API server, if any.
	Reason string
}

// RejectionListener is notified synchronously of each CredentialRejection.
type RejectionListener func(CredentialRejection)

// RejectionNotifier fans CredentialRejections out to registered listeners.
// A single notifier is shared by every specialized client of one API client.
type RejectionNotifier struct {
	mu        sync.RWMutex
	nextID    int
	listeners []registeredListener
}

type registeredListener struct {
	id     int
	listen RejectionListener
}

// NewRejectionNotifier returns an empty RejectionNotifier.
func NewRejectionNotifier() *RejectionNotifier {
	return &RejectionNotifier{}
}

// Subscribe registers a listener and returns a function that unregisters it.
func (r *RejectionNotifier) Subscribe(listener RejectionListener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners = append(
		r.listeners,
		registeredListener{
			id:     id,
			listen: listener,
		},
	)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, l := range r.listeners {
			if l.id == id {
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify delivers the rejection to every registered listener in
// registration order.
func (r *RejectionNotifier) Notify(rejection CredentialRejection) {
	r.mu.RLock()
	listeners := make([]registeredListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()
	// Listeners run without the lock held so they may unsubscribe themselves.
	for _, l := range listeners {
		l.listen(rejection)
	}
}
