package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gotodo/todokit/pkg/apiclient"
	"github.com/gotodo/todokit/pkg/authapi"
	"github.com/gotodo/todokit/pkg/kv"
	"github.com/gotodo/todokit/pkg/logger"
	"github.com/gotodo/todokit/pkg/session"
	"github.com/gotodo/todokit/pkg/todo"
)

// app wires one session Manager and its dependents for a single CLI run.
type app struct {
	log     *slog.Logger
	storage kv.Storage
	jar     *persistentJar
	session *session.Manager
	todos   *todo.Store

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func newApp(cfg appConfig, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	log := logger.New(
		logger.WithEnvironment(cfg.Env, "todo"),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithFormatName(cfg.LogFormat),
		logger.WithOutput(stderr),
	)

	storage, err := kv.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	jar, err := newPersistentJar(storage, log)
	if err != nil {
		return nil, err
	}

	authClient, err := apiclient.NewFromConfig(cfg.API,
		apiclient.WithCookieJar(jar),
		apiclient.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("auth client: %w", err)
	}

	mgr := session.NewFromConfig(cfg.Session,
		session.WithStorage(storage),
		session.WithGateway(authapi.New(authClient, authapi.WithLogger(log))),
		session.WithLogger(log),
	)

	todoAPI, err := todo.NewAuthorizedAPI(cfg.API, mgr.TokenSource(), apiclient.WithLogger(log))
	if err != nil {
		_ = mgr.Close()
		return nil, fmt.Errorf("todo client: %w", err)
	}

	return &app{
		log:     log,
		storage: storage,
		jar:     jar,
		session: mgr,
		todos:   todo.NewStore(todoAPI, mgr, todo.WithConfig(cfg.Todo), todo.WithLogger(log)),
		in:      bufio.NewReader(stdin),
		out:     stdout,
		errOut:  stderr,
	}, nil
}

// start restores the stored session and begins clearing the to-do cache on
// sign out. The returned func stops the watcher.
func (a *app) start(ctx context.Context) func() {
	if err := a.session.InitAuth(ctx); err != nil {
		a.log.WarnContext(ctx, "continuing without stored session", logger.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := a.session.Subscribe(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.todos.Watch(ctx, sub)
	}()

	return func() {
		cancel()
		<-done
		_ = a.session.Close()
	}
}
