package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gotodo/todokit/pkg/apiclient"
	"github.com/gotodo/todokit/pkg/authapi"
	"github.com/gotodo/todokit/pkg/session"
	"github.com/gotodo/todokit/pkg/todo"
)

var (
	errSignedIn    = errors.New("already signed in, run \"todo logout\" first")
	errNotSignedIn = errors.New("not signed in, run \"todo login\" first")
	errExpired     = errors.New("session expired, sign in again")
)

// guard restricts a command to one session state, like the route guards of
// the web client.
type guard int

const (
	anyone guard = iota
	guestOnly
	authOnly
)

func (g guard) check(a *app) error {
	switch {
	case g == guestOnly && a.session.IsAuthenticated():
		return errSignedIn
	case g == authOnly && !a.session.IsAuthenticated():
		return errNotSignedIn
	default:
		return nil
	}
}

type command struct {
	help  string
	guard guard
	run   func(ctx context.Context, a *app, args []string) error
}

var commandOrder = []string{"login", "register", "logout", "whoami", "refresh", "list", "add", "show", "rm"}

var commands = map[string]command{
	"login":    {help: "sign in (-u name [-p password])", guard: guestOnly, run: runLogin},
	"register": {help: "create an account and sign in", guard: guestOnly, run: runRegister},
	"logout":   {help: "sign out", guard: authOnly, run: runLogout},
	"whoami":   {help: "show the signed-in user", guard: anyone, run: runWhoami},
	"refresh":  {help: "renew the session with the refresh cookie", guard: anyone, run: runRefresh},
	"list":     {help: "list to-dos, newest first", guard: authOnly, run: runList},
	"add":      {help: "add a to-do: add <text>", guard: authOnly, run: runAdd},
	"show":     {help: "show one to-do: show <id>", guard: authOnly, run: runShow},
	"rm":       {help: "delete a to-do: rm <id>", guard: authOnly, run: runRemove},
}

func runLogin(ctx context.Context, a *app, args []string) error {
	user, pass, err := credentials(a, "login", args)
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, user, pass); err != nil {
		return err
	}
	return signedInAs(a)
}

func runRegister(ctx context.Context, a *app, args []string) error {
	user, pass, err := credentials(a, "register", args)
	if err != nil {
		return err
	}
	if err := a.session.Register(ctx, user, pass); err != nil {
		return err
	}
	return signedInAs(a)
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	err := a.session.Logout(ctx)
	if jerr := a.jar.Reset(); jerr != nil {
		err = errors.Join(err, jerr)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func runWhoami(_ context.Context, a *app, _ []string) error {
	u, ok := a.session.User()
	if !ok {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (id %d, member since %s)\n", u.Username, u.ID, todo.FormatDate(u.CreatedAt, nil))
	return nil
}

func runRefresh(ctx context.Context, a *app, _ []string) error {
	if err := a.session.Refresh(ctx); err != nil {
		if session.IsUnauthorized(err) {
			return errExpired
		}
		return err
	}
	return signedInAs(a)
}

func runList(ctx context.Context, a *app, _ []string) error {
	if err := a.todos.Fetch(ctx); err != nil {
		return err
	}
	items := a.todos.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.out, "nothing to do")
		return nil
	}
	for _, it := range items {
		printItem(a, it)
	}
	fmt.Fprintf(a.out, "%d item(s)\n", a.todos.Count())
	return nil
}

func runAdd(ctx context.Context, a *app, args []string) error {
	value := strings.TrimSpace(strings.Join(args, " "))
	if value == "" {
		return errors.New("usage: todo add <text>")
	}
	it, err := a.todos.Create(ctx, value)
	if err != nil {
		return err
	}
	printItem(a, it)
	return nil
}

func runShow(ctx context.Context, a *app, args []string) error {
	id, err := parseID("show", args)
	if err != nil {
		return err
	}
	it, err := a.todos.Get(ctx, id)
	if err != nil {
		return err
	}
	printItem(a, it)
	return nil
}

func runRemove(ctx context.Context, a *app, args []string) error {
	id, err := parseID("rm", args)
	if err != nil {
		return err
	}
	if err := a.todos.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted #%d\n", id)
	return nil
}

func signedInAs(a *app) error {
	u, _ := a.session.User()
	fmt.Fprintf(a.out, "signed in as %s\n", u.Username)
	return nil
}

func printItem(a *app, it todo.Item) {
	fmt.Fprintf(a.out, "#%-4d %s  %s\n", it.ID, todo.FormatDate(it.Date, time.Local), it.Value)
}

func parseID(name string, args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: todo %s <id>", name)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// credentials reads -u/-p flags, then TODO_PASSWORD, then one line of input.
func credentials(a *app, name string, args []string) (string, string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password (or TODO_PASSWORD, or prompt)")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	if *user == "" && fs.NArg() > 0 {
		*user = fs.Arg(0)
	}
	if *user == "" {
		return "", "", fmt.Errorf("usage: todo %s -u <name> [-p <password>]", name)
	}
	if *pass == "" {
		*pass = os.Getenv("TODO_PASSWORD")
	}
	if *pass == "" {
		fmt.Fprint(a.errOut, "Password: ")
		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			return "", "", authapi.ErrMissingCredentials
		}
		*pass = strings.TrimRight(line, "\r\n")
	}
	return *user, *pass, nil
}

// describe turns API failures into messages fit for a terminal.
func describe(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, authapi.ErrMissingCredentials):
		return errors.New("username and password are required")
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, session.ErrSessionSuperseded):
		return errExpired
	case session.IsUnauthorized(err):
		if msg := apiclient.UserMessage(err); msg != err.Error() {
			return errors.New(msg)
		}
		return errExpired
	case errors.Is(err, session.ErrInvalidResponseShape):
		return errors.New("unexpected response from server")
	default:
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) {
			return errors.New(apiclient.UserMessage(err))
		}
		return err
	}
}
