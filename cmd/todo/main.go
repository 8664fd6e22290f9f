// Command todo is a terminal client for the goTodo service.
//
//	todo [-config file] <command> [args]
//
// Commands available while signed out: login, register. While signed in:
// logout, list, add, show, rm. Any time: whoami, refresh.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gotodo/todokit/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	default:
		fmt.Fprintln(os.Stderr, "todo:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", defaultConfigFile(), "path to YAML config file")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		usage(fs)
		return flag.ErrHelp
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		usage(fs)
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}

	var cfg appConfig
	if err := config.LoadFile(*configFile, &cfg); err != nil {
		return err
	}

	a, err := newApp(cfg, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	stopApp := a.start(ctx)
	defer stopApp()

	if err := cmd.guard.check(a); err != nil {
		return err
	}
	return describe(cmd.run(ctx, a, fs.Args()[1:]))
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "usage: todo [-config file] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].help)
	}
	fmt.Fprintln(w)
	fs.PrintDefaults()
}
