package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotodo/todokit/pkg/apiclient"
	"github.com/gotodo/todokit/pkg/session"
)

func newClient(t *testing.T, h http.HandlerFunc, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := apiclient.New(srv.URL+"/api", opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	_, err := apiclient.New("")
	assert.ErrorIs(t, err, apiclient.ErrEmptyBaseURL)

	_, err = apiclient.New("localhost:8080")
	assert.ErrorIs(t, err, apiclient.ErrInvalidBaseURL)

	_, err = apiclient.New("://bad")
	assert.ErrorIs(t, err, apiclient.ErrInvalidBaseURL)

	c, err := apiclient.NewFromConfig(apiclient.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", c.BaseURL().String())
	assert.NotNil(t, c.HTTPClient().Jar)
	assert.Equal(t, 15*time.Second, c.HTTPClient().Timeout)
}

func TestClient_Do(t *testing.T) {
	t.Run("sends json and decodes response", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/todos", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			_, err := uuid.Parse(r.Header.Get(apiclient.RequestIDHeader))
			assert.NoError(t, err)

			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "milk", in["value"])

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":1,"value":"milk"}`))
		}, apiclient.WithUserAgent("test-agent"))

		var out struct {
			ID    int64  `json:"id"`
			Value string `json:"value"`
		}
		err := c.Do(context.Background(), "todos.create", http.MethodPost, "/todos", map[string]string{"value": "milk"}, &out)
		require.NoError(t, err)
		assert.Equal(t, int64(1), out.ID)
	})

	t.Run("no content", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
		})
		require.NoError(t, c.Do(context.Background(), "auth.logout", http.MethodPost, "/auth/logout", nil, nil))
	})

	t.Run("401 is unauthorized", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid token"}`))
		})

		err := c.Do(context.Background(), "todos.list", http.MethodGet, "/todos", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, session.ErrUnauthorized)
		assert.NotErrorIs(t, err, session.ErrTransportFailure)
		assert.True(t, session.IsUnauthorized(err))

		var apiErr *apiclient.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 401, apiErr.HTTPStatus())
		assert.Equal(t, "invalid token", apiErr.Message)
		assert.Equal(t, "todos.list", apiErr.Op)
		assert.NotEmpty(t, apiErr.RequestID)
		assert.Equal(t, "invalid token", apiclient.UserMessage(err))
	})

	t.Run("other statuses are transport failures", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		err := c.Do(context.Background(), "todos.list", http.MethodGet, "/todos", nil, nil)
		assert.ErrorIs(t, err, session.ErrTransportFailure)
		assert.NotErrorIs(t, err, session.ErrUnauthorized)
		assert.False(t, session.IsUnauthorized(err))
		assert.Equal(t, "boom", apiclient.UserMessage(err))
	})

	t.Run("undecodable body is a shape error", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		var out map[string]any
		err := c.Do(context.Background(), "todos.list", http.MethodGet, "/todos", nil, &out)
		assert.ErrorIs(t, err, session.ErrInvalidResponseShape)
		assert.NotErrorIs(t, err, session.ErrTransportFailure)
	})

	t.Run("network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := apiclient.New(srv.URL)
		require.NoError(t, err)

		err = c.Do(context.Background(), "todos.list", http.MethodGet, "/todos", nil, nil)
		assert.ErrorIs(t, err, session.ErrTransportFailure)

		var apiErr *apiclient.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Zero(t, apiErr.Status)
	})

	t.Run("transport option", func(t *testing.T) {
		boom := errors.New("no token")
		c := newClient(t, func(http.ResponseWriter, *http.Request) {
			t.Fatal("request must not reach the server")
		}, apiclient.WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, boom
		})))

		err := c.Do(context.Background(), "todos.list", http.MethodGet, "/todos", nil, nil)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cookies are kept between calls", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/auth/login":
				http.SetCookie(w, &http.Cookie{Name: "goTodo_refresh_token", Value: "r1", Path: "/api/auth", HttpOnly: true})
			case "/api/auth/refresh":
				ck, err := r.Cookie("goTodo_refresh_token")
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, "r1", ck.Value)
			}
			w.WriteHeader(http.StatusNoContent)
		})

		ctx := context.Background()
		require.NoError(t, c.Do(ctx, "auth.login", http.MethodPost, "/auth/login", nil, nil))
		require.NoError(t, c.Do(ctx, "auth.refresh", http.MethodPost, "/auth/refresh", nil, nil))
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestError_Message(t *testing.T) {
	err := &apiclient.Error{Op: "auth.login", Method: "POST", Path: "/auth/login", Status: 401, Message: "invalid credentials"}
	assert.Equal(t, "auth.login: POST /auth/login: 401 Unauthorized: invalid credentials", err.Error())

	err = &apiclient.Error{Op: "auth.login", Method: "POST", Path: "/auth/login", Err: errors.New("dial tcp")}
	assert.Equal(t, "auth.login: POST /auth/login: dial tcp", err.Error())
	assert.Equal(t, "", apiclient.UserMessage(nil))
}
