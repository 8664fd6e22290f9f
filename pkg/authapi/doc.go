// Package authapi implements session.Gateway against the goTodo /auth
// endpoints: login, register, refresh (cookie based) and logout.
//
// A response becomes a session.Session only when it carries a non-empty
// accessToken and a user that passes session.IsValidUser. Anything else is
// session.ErrInvalidResponseShape.
package authapi
