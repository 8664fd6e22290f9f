package session

// User is the profile of the signed-in account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	// CreatedAt is kept as the ISO-8601 string the server sent.
	CreatedAt string `json:"createdAt"`
}

// Session is a bearer token together with the user it belongs to.
type Session struct {
	Token string
	User  User
}

// Status is derived from the current session, never stored.
type Status string

const (
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

func (s Status) String() string {
	return string(s)
}
