package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests use a recording stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Users(ctx context.Context, search string) error
	Tokens(ctx context.Context, status string) error
	Generate(ctx context.Context, plan string, days, count int) error
	Revoke(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, days int) error
	ChangePlan(ctx context.Context, userID, plan string, days int) error
	Stats(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, exit"
	helpLoggedIn  = "Available commands: users [search], tokens [status], gen <plan> <days> <count>, " +
		"revoke <id>, extend <id> <days>, plan <user> <plan> <days>, stats, logout, exit"
)

// runREPL reads commands line by line from reader until EOF, "exit" or
// "quit". Command errors are reported through report and never end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, report func(error)) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("lirra (%s)> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if cmd == "help" {
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		}
		if cmd != "login" && !a.isLoggedIn() {
			if _, known := usage[cmd]; known {
				printlnFn("Please login first")
			} else {
				printlnFn("Unknown command: " + cmd)
			}
			continue
		}

		if cerr := dispatch(ctx, a, cmd, args); cerr != nil {
			report(cerr)
		}
	}
}

var usage = map[string]string{
	"login":  "login",
	"logout": "logout",
	"users":  "users [search]",
	"tokens": "tokens [status]",
	"gen":    "gen <plan> <days> <count>",
	"revoke": "revoke <id>",
	"extend": "extend <id> <days>",
	"plan":   "plan <user> <plan> <days>",
	"stats":  "stats",
}

var errUsage = errors.New("usage")

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	err := run(ctx, a, cmd, args)
	if errors.Is(err, errUsage) {
		return fmt.Errorf("usage: %s", usage[cmd])
	}
	return err
}

func run(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "users":
		return a.Users(ctx, strings.Join(args, " "))
	case "tokens":
		if len(args) > 1 {
			return errUsage
		}
		return a.Tokens(ctx, firstOr(args, ""))
	case "stats":
		return a.Stats(ctx)
	case "gen":
		if len(args) != 3 {
			return errUsage
		}
		days, err := positiveInt("days", args[1])
		if err != nil {
			return err
		}
		count, err := positiveInt("count", args[2])
		if err != nil {
			return err
		}
		return a.Generate(ctx, args[0], days, count)
	case "revoke":
		if len(args) != 1 {
			return errUsage
		}
		return a.Revoke(ctx, args[0])
	case "extend":
		if len(args) != 2 {
			return errUsage
		}
		days, err := positiveInt("days", args[1])
		if err != nil {
			return err
		}
		return a.Extend(ctx, args[0], days)
	case "plan":
		if len(args) != 3 {
			return errUsage
		}
		days, err := positiveInt("days", args[2])
		if err != nil {
			return err
		}
		return a.ChangePlan(ctx, args[0], args[1], days)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func firstOr(args []string, def string) string {
	if len(args) == 0 {
		return def
	}
	return args[0]
}

// Root runs the interactive session. A token from the environment skips the
// initial login prompt.
func (a *App) Root(ctx context.Context) {
	a.colors.info.Fprintln(a.out, "Lirra admin console (type 'help' for commands)")
	if err := a.authenticate(ctx, ""); err != nil && !errors.Is(err, errNoCredentials) {
		a.report(err)
	}
	runREPL(ctx, a, a.status, a.reader, a.report)
}

func (a *App) report(err error) {
	a.colors.fail.Fprintf(a.out, "Error: %s\n", describe(err))
}
