// Package todo is the to-do list client: an HTTP API wrapper and a Store
// that caches the list for the signed-in user.
//
// The Store is a dependent of session.Manager. It never reads session
// fields; it only reacts to failures through session.HandleFailure and,
// optionally, to signed_out events via Watch:
//
//	api, _ := todo.NewAuthorizedAPI(cfg, mgr.TokenSource())
//	store := todo.NewStore(api, mgr)
//	go store.Watch(ctx, mgr.Subscribe(ctx))
package todo
