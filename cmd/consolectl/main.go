// consolectl drives the administration console from a terminal.
//
// The session persists in a local sqlite file between invocations, so
// "consolectl login" followed by "consolectl suppliers list" behaves like a
// signed-in browser tab. With --stub every command talks to an in-process
// backend seeded with an "admin" / "admin-password" account.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal/stubbackend"
	"github.com/MrEthical07/goSession/session"
)

// exitError carries a process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

type globalOptions struct {
	configPath string
	envFile    string
	baseURL    string
	dbPath     string
	stub       bool
	verbose    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts globalOptions

	flagSet := pflag.NewFlagSet("consolectl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flagSet.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with GOSESSION_* overrides (ignored when missing)")
	flagSet.StringVar(&opts.baseURL, "base-url", "", "backend API base URL (overrides config)")
	flagSet.StringVar(&opts.dbPath, "db", "", "sqlite file holding the session (overrides config)")
	flagSet.BoolVar(&opts.stub, "stub", false, "talk to an in-process stub backend")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stderr, flagSet)
			return nil
		}
		return &exitError{code: 2, err: err}
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printUsage(stderr, flagSet)
		return nil
	}

	cmd, err := lookupCommand(flagSet.Args())
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	console, cleanup, err := openConsole(opts, stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := console.Start(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	console.OnTransition(func(t session.Transition) {
		if t.Reason == session.ReasonUnauthorized || t.Reason == session.ReasonExpired {
			fmt.Fprintln(stderr, "session ended; run \"consolectl login\" to sign in again")
		}
	})

	return cmd.run(ctx, console, cmd.args, stdout)
}

func openConsole(opts globalOptions, stderr io.Writer) (*goSession.Console, func(), error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("loading %s: %w", opts.envFile, err)
		}
	}

	cfg, err := goSession.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	// A terminal session must outlive the process.
	if cfg.Storage.Backend == goSession.StorageMemory {
		cfg.Storage.Backend = goSession.StorageSQLite
	}
	if opts.dbPath != "" {
		cfg.Storage.SQLitePath = opts.dbPath
	}
	if opts.baseURL != "" {
		cfg.API.BaseURL = opts.baseURL
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.Logging.Format = "console"

	cleanup := func() {}
	if opts.stub {
		url, stop, err := startStub()
		if err != nil {
			return nil, nil, err
		}
		cfg.API.BaseURL = url
		cleanup = stop
	}

	logger, err := goSession.NewLogger(cfg.Logging, stderr)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if !opts.verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	console, err := goSession.New().WithConfig(cfg).WithLogger(logger).Build()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	stop := cleanup
	return console, func() {
		_ = console.Close()
		stop()
	}, nil
}

// startStub serves a seeded stub backend on a loopback port. The stub's
// fixed secret keeps tokens valid across consolectl invocations.
func startStub() (string, func(), error) {
	backend, err := stubbackend.New(stubbackend.DefaultConfig())
	if err != nil {
		return "", nil, err
	}
	if err := backend.SeedDemo(); err != nil {
		return "", nil, err
	}
	srv := httptest.NewServer(backend)
	return srv.URL, srv.Close, nil
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `consolectl: administration console client

Usage:
  consolectl [flags] <command> [args]

Commands:
`)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-22s %s\n", c.usage, c.summary)
	}
	fmt.Fprintf(w, "\nFlags:\n%s", flagSet.FlagUsages())
}
