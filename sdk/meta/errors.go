// Package meta contains types shared by every client in the storefront SDK,
// chiefly the typed errors that correspond to non-success API responses.
package meta

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrAuthentication represents an error indicating the credential presented
// with a request was missing, invalid, or expired. It corresponds to an HTTP
// 401 response from the storefront API.
type ErrAuthentication struct {
	Reason string `json:"error,omitempty"`
}

// NewErrAuthentication returns a new ErrAuthentication with the given reason.
func NewErrAuthentication(reason string) *ErrAuthentication {
	return &ErrAuthentication{
		Reason: reason,
	}
}

func (e *ErrAuthentication) Error() string {
	if e.Reason == "" {
		return "Could not authenticate the request."
	}
	return fmt.Sprintf("Could not authenticate the request: %s", e.Reason)
}

// ErrAuthorization represents an error indicating the principal associated
// with a request is not permitted to perform the requested operation.
type ErrAuthorization struct {
	Reason string `json:"error,omitempty"`
}

// NewErrAuthorization returns a new ErrAuthorization.
func NewErrAuthorization(reason string) *ErrAuthorization {
	return &ErrAuthorization{
		Reason: reason,
	}
}

func (e *ErrAuthorization) Error() string {
	if e.Reason == "" {
		return "The request is not authorized."
	}
	return fmt.Sprintf("The request is not authorized: %s", e.Reason)
}

// ErrBadRequest represents a validation or business rule failure, e.g.
// invalid credentials or a malformed search.
type ErrBadRequest struct {
	Reason  string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

// NewErrBadRequest returns a new ErrBadRequest.
func NewErrBadRequest(reason string, details ...string) *ErrBadRequest {
	return &ErrBadRequest{
		Reason:  reason,
		Details: details,
	}
}

func (e *ErrBadRequest) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("Bad request: %s", e.Reason)
	}
	msg := fmt.Sprintf("Bad request: %s:", e.Reason)
	for i, detail := range e.Details {
		msg = fmt.Sprintf("%s\n  %d. %s", msg, i, detail)
	}
	return msg
}

// ErrNotFound represents an error indicating a requested resource does not
// exist.
type ErrNotFound struct {
	Reason string `json:"error,omitempty"`
}

// NewErrNotFound returns a new ErrNotFound.
func NewErrNotFound(reason string) *ErrNotFound {
	return &ErrNotFound{
		Reason: reason,
	}
}

func (e *ErrNotFound) Error() string {
	if e.Reason == "" {
		return "The requested resource was not found."
	}
	return fmt.Sprintf("Not found: %s", e.Reason)
}

// ErrConflict represents an error indicating the request conflicts with
// existing state, e.g. registering an email address that is already in use.
type ErrConflict struct {
	Reason string `json:"error,omitempty"`
}

// NewErrConflict returns a new ErrConflict.
func NewErrConflict(reason string) *ErrConflict {
	return &ErrConflict{
		Reason: reason,
	}
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("Conflict: %s", e.Reason)
}

// ErrInternalServer represents a failure on the API server's end.
type ErrInternalServer struct {
	Reason string `json:"error,omitempty"`
}

// NewErrInternalServer returns a new ErrInternalServer.
func NewErrInternalServer() *ErrInternalServer {
	return &ErrInternalServer{}
}

func (e *ErrInternalServer) Error() string {
	return "An internal server error occurred."
}

// ErrUnexpectedStatus represents any non-success response that none of the
// more specific error types account for.
type ErrUnexpectedStatus struct {
	StatusCode int    `json:"-"`
	Reason     string `json:"error,omitempty"`
}

func (e *ErrUnexpectedStatus) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("received %d from API server", e.StatusCode)
	}
	return fmt.Sprintf(
		"received %d from API server: %s",
		e.StatusCode,
		e.Reason,
	)
}

// Message returns text suitable for display to an end user, preferring the
// reason supplied by the API server over the decorated error string. Errors
// wrapped using github.com/pkg/errors are unwrapped first.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var reason string
	switch e := errors.Cause(err).(type) {
	case *ErrAuthentication:
		reason = e.Reason
	case *ErrAuthorization:
		reason = e.Reason
	case *ErrBadRequest:
		reason = e.Reason
	case *ErrNotFound:
		reason = e.Reason
	case *ErrConflict:
		reason = e.Reason
	case *ErrInternalServer:
		reason = e.Reason
	case *ErrUnexpectedStatus:
		reason = e.Reason
	}
	if reason == "" {
		return errors.Cause(err).Error()
	}
	return reason
}

// IsAuthentication returns true if the given error, once unwrapped, is an
// *ErrAuthentication.
func IsAuthentication(err error) bool {
	_, ok := errors.Cause(err).(*ErrAuthentication)
	return ok
}
