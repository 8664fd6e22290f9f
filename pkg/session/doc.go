// Package session manages the authenticated session of a goTodo client.
//
// A Manager holds the bearer token and the signed-in User, persists both
// through a kv.Storage and talks to the auth service through a Gateway.
// Its Status is derived from whether a token is present; a token is never
// held without its user.
//
//	mgr := session.New(
//	    session.WithStorage(store),
//	    session.WithGateway(authapi.New(client)),
//	    session.WithLogger(log),
//	)
//	defer mgr.Close()
//
//	_ = mgr.InitAuth(ctx) // optimistic restore, no network
//	if err := mgr.Login(ctx, "alice", "secret"); err != nil { ... }
//
// # Dependent stores
//
// Stores that make authorized calls of their own run HandleFailure on every
// failed call. A 401 (or a call made without a session) signs the Manager
// out and clears the store; any other failure keeps both intact. Stores can
// additionally Subscribe to signed_in and signed_out events.
//
// # Authorized HTTP clients
//
// TokenSource plugs the current token into golang.org/x/oauth2:
//
//	hc := &http.Client{Transport: &oauth2.Transport{Source: mgr.TokenSource()}}
package session
