package session

import "errors"

var (
	// ErrInvalidResponseShape indicates a trusted boundary (the auth service
	// or local storage) returned structurally wrong data.
	ErrInvalidResponseShape = errors.New("session.invalid_response_shape")

	// ErrUnauthorized indicates the credential is no longer accepted. It is the
	// only failure class that tears a session down.
	ErrUnauthorized = errors.New("session.unauthorized")

	// ErrTransportFailure covers every other failed network call.
	ErrTransportFailure = errors.New("session.transport_failure")

	// ErrNotAuthenticated is returned when an operation needs a session and
	// there is none.
	ErrNotAuthenticated = errors.New("session.not_authenticated")

	// ErrInvalidSession is returned when a session without a token or a
	// username is set.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrSessionSuperseded is returned when a login, register or refresh
	// finished after the session was cleared.
	ErrSessionSuperseded = errors.New("session.superseded")

	// ErrNoGateway is returned by network operations on a Manager built
	// without a Gateway.
	ErrNoGateway = errors.New("session.no_gateway")
)
