package session

import "time"

type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// Reason explains what caused an event.
type Reason string

const (
	ReasonRestore      Reason = "restore"
	ReasonLogin        Reason = "login"
	ReasonRegister     Reason = "register"
	ReasonRefresh      Reason = "refresh"
	ReasonSet          Reason = "set"
	ReasonLogout       Reason = "logout"
	ReasonUnauthorized Reason = "unauthorized"
	ReasonUserCleared  Reason = "user_cleared"
	// ReasonReplaced accompanies the signed_out emitted when a session for a
	// different user replaces the current one.
	ReasonReplaced Reason = "replaced"
)

// Event is published on session transitions only. Replacing a token for the
// same user publishes nothing.
type Event struct {
	Type   EventType
	Reason Reason
	// User is the user signing in, or the one that just signed out.
	User User
	At   time.Time
}
