// Package apiclient is the JSON-over-HTTP client shared by the goTodo API
// wrappers.
//
// Every request carries a fresh X-Request-ID (github.com/google/uuid).
// Failures come back as *Error, which errors.Is maps onto the session
// sentinels so callers can classify them without knowing about HTTP:
//
//	err := c.Do(ctx, "todos.list", http.MethodGet, "/todos", nil, &items)
//	if errors.Is(err, session.ErrUnauthorized) { ... }
//
// The default http.Client keeps cookies in memory, which is how the refresh
// cookie set by the auth endpoints is sent back on refresh.
package apiclient
