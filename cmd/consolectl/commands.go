package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/pflag"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/schema"
)

// PasswordEnv supplies the login password when --password is not given.
const PasswordEnv = "GOSESSION_PASSWORD"

type command struct {
	path    []string
	usage   string
	summary string
	run     func(ctx context.Context, c *goSession.Console, args []string, out io.Writer) error
}

type boundCommand struct {
	command
	args []string
}

var commands = []command{
	{path: []string{"login"}, usage: "login -u USER", summary: "sign in and persist the session", run: runLogin},
	{path: []string{"logout"}, usage: "logout", summary: "end the session", run: runLogout},
	{path: []string{"whoami"}, usage: "whoami", summary: "show the signed-in user as the backend sees it", run: runWhoami},
	{path: []string{"status"}, usage: "status", summary: "show the local session without calling the backend", run: runStatus},
	{path: []string{"suppliers", "list"}, usage: "suppliers list", summary: "list suppliers (--page, --limit, --search)", run: runSuppliersList},
	{path: []string{"suppliers", "get"}, usage: "suppliers get ID", summary: "show one supplier", run: runSuppliersGet},
}

func lookupCommand(args []string) (boundCommand, error) {
	for _, c := range commands {
		if len(args) < len(c.path) {
			continue
		}
		match := true
		for i, word := range c.path {
			if args[i] != word {
				match = false
				break
			}
		}
		if match {
			return boundCommand{command: c, args: args[len(c.path):]}, nil
		}
	}
	return boundCommand{}, fmt.Errorf("unknown command %q", strings.Join(args, " "))
}

// exitCodeFor maps classified API errors onto distinct exit codes.
func exitCodeFor(err error) error {
	switch api.KindOf(err) {
	case api.KindAuth:
		return &exitError{code: 3, err: err}
	case api.KindValidation:
		return &exitError{code: 4, err: err}
	case api.KindNetwork:
		return &exitError{code: 5, err: err}
	}
	return err
}

func parseFlags(name string, args []string, define func(*pflag.FlagSet)) (*pflag.FlagSet, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	define(fs)
	if err := fs.Parse(args); err != nil {
		return nil, &exitError{code: 2, err: fmt.Errorf("%s: %w", name, err)}
	}
	return fs, nil
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func runLogin(ctx context.Context, c *goSession.Console, args []string, out io.Writer) error {
	var username, password string
	if _, err := parseFlags("login", args, func(fs *pflag.FlagSet) {
		fs.StringVarP(&username, "username", "u", "", "account name")
		fs.StringVarP(&password, "password", "p", "", "password (default $"+PasswordEnv+")")
	}); err != nil {
		return err
	}
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}

	sess, err := c.SignIn(ctx, username, password)
	if err != nil {
		if errors.Is(err, goSession.ErrEmptyCredentials) {
			return &exitError{code: 2, err: err}
		}
		return exitCodeFor(err)
	}
	fmt.Fprintf(out, "signed in as %s (expires %s)\n", sess.User.Username, sess.ExpiresAtTime().Format(time.RFC3339))
	return nil
}

func runLogout(ctx context.Context, c *goSession.Console, _ []string, out io.Writer) error {
	if c.Session() == nil {
		fmt.Fprintln(out, "not signed in")
		return nil
	}
	if err := c.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "signed out")
	return nil
}

func runWhoami(ctx context.Context, c *goSession.Console, _ []string, out io.Writer) error {
	user, err := c.Me(ctx)
	if err != nil {
		return exitCodeFor(err)
	}
	return writeJSON(out, user)
}

func runStatus(_ context.Context, c *goSession.Console, _ []string, out io.Writer) error {
	sess := c.Session()
	if sess == nil {
		fmt.Fprintln(out, "state: unauthenticated")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "state:\t%s\n", c.State())
	fmt.Fprintf(tw, "user:\t%s (id %d)\n", sess.User.Username, sess.User.ID)
	fmt.Fprintf(tw, "expires:\t%s\n", sess.ExpiresAtTime().Format(time.RFC3339))
	fmt.Fprintf(tw, "remaining:\t%s\n", sess.Remaining(time.Now()).Truncate(time.Second))
	return tw.Flush()
}

func runSuppliersList(ctx context.Context, c *goSession.Console, args []string, out io.Writer) error {
	var page api.Page
	if _, err := parseFlags("suppliers list", args, func(fs *pflag.FlagSet) {
		fs.IntVar(&page.Page, "page", 1, "1-based page")
		fs.IntVar(&page.Limit, "limit", 20, "page size")
		fs.StringVar(&page.Search, "search", "", "filter by name or code")
	}); err != nil {
		return err
	}

	list, err := goSession.Authorized(ctx, c, func(ctx context.Context, token string) (api.List[schema.Supplier], error) {
		return c.Suppliers().List(ctx, token, page)
	})
	if err != nil {
		return exitCodeFor(err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tACTIVE")
	for _, s := range list.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", s.ID, s.SupplierCode, s.SupplierName, s.IsActive)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "showing %d of %d\n", len(list.Items), list.TotalCount)
	return nil
}

func runSuppliersGet(ctx context.Context, c *goSession.Console, args []string, out io.Writer) error {
	if len(args) != 1 {
		return &exitError{code: 2, err: errors.New("suppliers get: expected exactly one ID")}
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return &exitError{code: 2, err: fmt.Errorf("suppliers get: invalid ID %q", args[0])}
	}

	sup, err := goSession.Authorized(ctx, c, func(ctx context.Context, token string) (schema.Supplier, error) {
		return c.Suppliers().Get(ctx, token, id)
	})
	if err != nil {
		return exitCodeFor(err)
	}
	return writeJSON(out, sup)
}
