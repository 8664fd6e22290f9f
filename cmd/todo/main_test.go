package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService is a small in-memory goTodo backend.
type fakeService struct {
	mu       sync.Mutex
	users    map[string]string
	tokens   map[string]string
	refresh  map[string]string
	todos    map[string][]map[string]any
	nextID   int
	sequence int
}

func newFakeService() *fakeService {
	return &fakeService{
		users:   map[string]string{"alice": "secret"},
		tokens:  map[string]string{},
		refresh: map[string]string{},
		todos:   map[string][]map[string]any{},
	}
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.users[in.Username] != in.Password || in.Password == "" {
			reply(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
			return
		}
		f.issue(w, in.Username, http.StatusOK)
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, taken := f.users[in.Username]; taken {
			reply(w, http.StatusConflict, map[string]string{"error": "Username is already taken"})
			return
		}
		f.users[in.Username] = in.Password
		f.issue(w, in.Username, http.StatusCreated)
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		ck, err := r.Cookie("goTodo_refresh_token")
		if err != nil || f.refresh[ck.Value] == "" {
			reply(w, http.StatusUnauthorized, map[string]string{"error": "Refresh token is required"})
			return
		}
		user := f.refresh[ck.Value]
		delete(f.refresh, ck.Value)
		f.issue(w, user, http.StatusOK)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if ck, err := r.Cookie("goTodo_refresh_token"); err == nil {
			delete(f.refresh, ck.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: "goTodo_refresh_token", Path: "/api/auth", MaxAge: -1})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/todos", f.authed(func(w http.ResponseWriter, _ *http.Request, user string) {
		list := f.todos[user]
		if list == nil {
			list = []map[string]any{}
		}
		reply(w, http.StatusOK, list)
	}))
	mux.HandleFunc("POST /api/todos", f.authed(func(w http.ResponseWriter, r *http.Request, user string) {
		var in struct{ Value string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.nextID++
		it := map[string]any{"id": f.nextID, "value": in.Value, "date": "2024-03-01T09:00:00Z"}
		f.todos[user] = append([]map[string]any{it}, f.todos[user]...)
		reply(w, http.StatusCreated, it)
	}))
	mux.HandleFunc("GET /api/todos/{id}", f.authed(func(w http.ResponseWriter, r *http.Request, user string) {
		for _, it := range f.todos[user] {
			if strconv.Itoa(it["id"].(int)) == r.PathValue("id") {
				reply(w, http.StatusOK, it)
				return
			}
		}
		reply(w, http.StatusNotFound, map[string]string{"error": "Todo not found"})
	}))
	mux.HandleFunc("DELETE /api/todos/{id}", f.authed(func(w http.ResponseWriter, r *http.Request, user string) {
		list := f.todos[user]
		for i, it := range list {
			if strconv.Itoa(it["id"].(int)) == r.PathValue("id") {
				f.todos[user] = append(list[:i], list[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		reply(w, http.StatusNotFound, map[string]string{"error": "Todo not found"})
	}))
	return mux
}

// issue must be called with f.mu held.
func (f *fakeService) issue(w http.ResponseWriter, user string, status int) {
	f.sequence++
	token := fmt.Sprintf("access-%d", f.sequence)
	rt := fmt.Sprintf("refresh-%d", f.sequence)
	f.tokens[token] = user
	f.refresh[rt] = user
	http.SetCookie(w, &http.Cookie{Name: "goTodo_refresh_token", Value: rt, Path: "/api/auth", HttpOnly: true, MaxAge: 3600})
	reply(w, status, map[string]any{
		"accessToken": token,
		"user":        map[string]any{"id": 1, "username": user, "createdAt": "2024-01-01T00:00:00Z"},
	})
}

func (f *fakeService) revokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.tokens)
}

func (f *fakeService) authed(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		user := f.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
		if user == "" {
			reply(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired access token"})
			return
		}
		next(w, r, user)
	}
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type cli struct {
	t       *testing.T
	storage string
}

func setup(t *testing.T) (*cli, *fakeService) {
	t.Helper()
	svc := newFakeService()
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	storage := filepath.Join(dir, "storage.json")
	t.Setenv("API_BASE_URL", srv.URL+"/api")
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_PATH", storage)
	t.Setenv("TODO_CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	t.Setenv("TODO_PASSWORD", "")
	t.Setenv("LOG_LEVEL", "error")
	return &cli{t: t, storage: storage}, svc
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	require.NoError(c.t, err, "todo %v", args)
	return out
}

func TestCLI_Lifecycle(t *testing.T) {
	c, _ := setup(t)

	assert.Equal(t, "not signed in\n", c.mustRun("whoami"))
	assert.Contains(t, c.mustRun("login", "-u", "alice", "-p", "secret"), "signed in as alice")
	assert.Contains(t, c.mustRun("whoami"), "alice (id 1")

	raw, err := os.ReadFile(c.storage)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "auth_token")
	assert.Contains(t, string(raw), "auth_user")

	assert.Equal(t, "nothing to do\n", c.mustRun("list"))
	assert.Contains(t, c.mustRun("add", "buy", "milk"), "buy milk")
	assert.Contains(t, c.mustRun("add", "walk dog"), "walk dog")

	out := c.mustRun("list")
	assert.Contains(t, out, "2 item(s)")
	assert.Less(t, strings.Index(out, "walk dog"), strings.Index(out, "buy milk"), "newest first")

	assert.Contains(t, c.mustRun("show", "#1"), "buy milk")
	assert.Equal(t, "deleted #1\n", c.mustRun("rm", "1"))
	assert.NotContains(t, c.mustRun("list"), "buy milk")

	assert.Equal(t, "signed out\n", c.mustRun("logout"))
	assert.Equal(t, "not signed in\n", c.mustRun("whoami"))

	raw, err = os.ReadFile(c.storage)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "auth_token")
	assert.NotContains(t, string(raw), "auth_cookies")
}

func TestCLI_Guards(t *testing.T) {
	c, _ := setup(t)

	_, err := c.run("", "list")
	assert.ErrorIs(t, err, errNotSignedIn)
	_, err = c.run("", "logout")
	assert.ErrorIs(t, err, errNotSignedIn)

	c.mustRun("login", "-u", "alice", "-p", "secret")
	_, err = c.run("", "login", "-u", "alice", "-p", "secret")
	assert.ErrorIs(t, err, errSignedIn)
	_, err = c.run("", "register", "-u", "bob", "-p", "pw")
	assert.ErrorIs(t, err, errSignedIn)
}

func TestCLI_RevokedTokenSignsOut(t *testing.T) {
	c, svc := setup(t)
	c.mustRun("login", "-u", "alice", "-p", "secret")
	c.mustRun("add", "stale")

	svc.revokeTokens()
	_, err := c.run("", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid or expired access token")

	assert.Equal(t, "not signed in\n", c.mustRun("whoami"))
}

func TestCLI_RefreshUsesStoredCookie(t *testing.T) {
	c, svc := setup(t)
	c.mustRun("login", "-u", "alice", "-p", "secret")

	svc.revokeTokens()
	assert.Contains(t, c.mustRun("refresh"), "signed in as alice")
	assert.Equal(t, "nothing to do\n", c.mustRun("list"), "new access token is accepted")

	c.mustRun("logout")
	_, err := c.run("", "refresh")
	assert.ErrorIs(t, err, errExpired)
}

func TestCLI_PasswordSources(t *testing.T) {
	t.Run("stdin", func(t *testing.T) {
		c, _ := setup(t)
		out, err := c.run("secret\n", "login", "alice")
		require.NoError(t, err)
		assert.Contains(t, out, "signed in as alice")
	})

	t.Run("environment", func(t *testing.T) {
		c, _ := setup(t)
		t.Setenv("TODO_PASSWORD", "secret")
		assert.Contains(t, c.mustRun("login", "-u", "alice"), "signed in as alice")
	})

	t.Run("empty input", func(t *testing.T) {
		c, _ := setup(t)
		_, err := c.run("", "login", "-u", "alice")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "username and password are required")
	})
}

func TestCLI_ServerMessages(t *testing.T) {
	c, _ := setup(t)

	_, err := c.run("", "login", "-u", "alice", "-p", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", err.Error())

	_, err = c.run("", "register", "-u", "alice", "-p", "x")
	require.Error(t, err)
	assert.Equal(t, "Username is already taken", err.Error())

	assert.Contains(t, c.mustRun("register", "-u", "bob", "-p", "pw"), "signed in as bob")
	_, err = c.run("", "show", "99")
	require.Error(t, err)
	assert.Equal(t, "Todo not found", err.Error())
	assert.Contains(t, c.mustRun("whoami"), "bob", "a 404 keeps the session")
}

func TestCLI_Usage(t *testing.T) {
	c, _ := setup(t)

	_, err := c.run("")
	assert.ErrorIs(t, err, flag.ErrHelp)

	_, err = c.run("", "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	c.mustRun("login", "-u", "alice", "-p", "secret")
	_, err = c.run("", "rm", "abc")
	assert.ErrorContains(t, err, "invalid id")
	_, err = c.run("", "add")
	assert.ErrorContains(t, err, "usage")
}

func TestCLI_ConfigFile(t *testing.T) {
	c, _ := setup(t)
	good := os.Getenv("API_BASE_URL")
	t.Setenv("API_BASE_URL", "http://127.0.0.1:1/api")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: "+good+"\nsession:\n  token_key: cli_token\n"), 0o600))

	out, err := c.run("", "-config", path, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "signed in as alice")

	raw, err := os.ReadFile(c.storage)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "cli_token")
}
