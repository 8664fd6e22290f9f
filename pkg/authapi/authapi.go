package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gotodo/todokit/pkg/apiclient"
	"github.com/gotodo/todokit/pkg/logger"
	"github.com/gotodo/todokit/pkg/session"
)

var (
	// ErrMissingCredentials is returned before any request when the trimmed
	// username or the password is empty.
	ErrMissingCredentials = errors.New("authapi.missing_credentials")

	ErrMissingToken = errors.New("authapi.missing_access_token")
	ErrMissingUser  = errors.New("authapi.missing_user")
)

// RefreshCookie is the HttpOnly cookie the server sets for refresh.
const RefreshCookie = "goTodo_refresh_token"

const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathRefresh  = "/auth/refresh"
	pathLogout   = "/auth/logout"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string          `json:"accessToken"`
	User        json.RawMessage `json:"user"`
}

// Client talks to the /auth endpoints. It implements session.Gateway.
type Client struct {
	api *apiclient.Client
	log *slog.Logger
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New wraps api. The refresh credential lives in api's cookie jar, so the
// same api client must be used for login and refresh.
func New(api *apiclient.Client, opts ...Option) *Client {
	c := &Client{api: api}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.OrDiscard(c.log).With(logger.Component("authapi"))
	return c
}

func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	return c.authenticate(ctx, "auth.login", pathLogin, username, password)
}

func (c *Client) Register(ctx context.Context, username, password string) (session.Session, error) {
	return c.authenticate(ctx, "auth.register", pathRegister, username, password)
}

// Refresh trades the refresh cookie for a new session.
func (c *Client) Refresh(ctx context.Context) (session.Session, error) {
	var resp authResponse
	if err := c.api.Do(ctx, "auth.refresh", http.MethodPost, pathRefresh, nil, &resp); err != nil {
		return session.Session{}, err
	}
	return c.toSession(ctx, "auth.refresh", resp)
}

// Logout revokes the refresh cookie on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.api.Do(ctx, "auth.logout", http.MethodPost, pathLogout, nil, nil)
}

func (c *Client) authenticate(ctx context.Context, op, path, username, password string) (session.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return session.Session{}, ErrMissingCredentials
	}

	var resp authResponse
	if err := c.api.Do(ctx, op, http.MethodPost, path, credentials{Username: username, Password: password}, &resp); err != nil {
		return session.Session{}, err
	}
	return c.toSession(ctx, op, resp)
}

// toSession accepts a response only when both the token and a valid user
// are present.
func (c *Client) toSession(ctx context.Context, op string, resp authResponse) (session.Session, error) {
	if resp.AccessToken == "" {
		c.log.WarnContext(ctx, "auth response without access token", logger.Operation(op))
		return session.Session{}, errors.Join(session.ErrInvalidResponseShape, ErrMissingToken)
	}
	if len(resp.User) == 0 || string(resp.User) == "null" {
		c.log.WarnContext(ctx, "auth response without user", logger.Operation(op))
		return session.Session{}, errors.Join(session.ErrInvalidResponseShape, ErrMissingUser)
	}

	user, err := session.DecodeUser(resp.User)
	if err != nil {
		c.log.WarnContext(ctx, "auth response with malformed user", logger.Operation(op), logger.Error(err))
		return session.Session{}, err
	}
	return session.Session{Token: resp.AccessToken, User: user}, nil
}

var _ session.Gateway = (*Client)(nil)
