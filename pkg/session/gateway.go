package session

import "context"

// Gateway is the remote auth service. Implementations return a Session only
// when the response passed shape validation; failures are classified with
// ErrUnauthorized, ErrTransportFailure or ErrInvalidResponseShape.
type Gateway interface {
	Login(ctx context.Context, username, password string) (Session, error)
	Register(ctx context.Context, username, password string) (Session, error)
	// Refresh exchanges the refresh credential held by the gateway for a new
	// session.
	Refresh(ctx context.Context) (Session, error)
	Logout(ctx context.Context) error
}
