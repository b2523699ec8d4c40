package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// printlnFn is a test seam for user-facing output of the REPL.
var printlnFn = fmt.Println

// execIface is the command surface of the REPL.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	ChangePassword(ctx context.Context, args []string) error
	CompleteOnboarding(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	New(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Trash(ctx context.Context, args []string) error
	Restore(ctx context.Context, args []string) error
	Purge(ctx context.Context, args []string) error
	EmptyTrash(ctx context.Context, args []string) error
	Drafts(ctx context.Context, args []string) error
	Recover(ctx context.Context, args []string) error
	Summary(ctx context.Context, args []string) error
	Tags(ctx context.Context, args []string) error
	Usage(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"

	helpLoggedIn = "Available commands: (l)ist [page], show <id>, new, edit <id>, delete <id>, " +
		"trash [page], restore <id>, purge <id>, empty, drafts, recover <id|new>, " +
		"summary <id>, tags <id>, usage, password, onboarding, logout, exit"
)

// runREPL reads commands line by line and dispatches them to a. It returns
// on EOF or on "exit"/"quit". Command errors are reported and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gn (%s)> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var run func(context.Context, []string) error

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "register":
			run = a.Register
		case "login":
			run = a.Login
		case "logout":
			run = a.Logout
		case "password":
			run = a.ChangePassword
		case "onboarding":
			run = a.CompleteOnboarding
		case "l", "list":
			run = a.List
		case "show":
			run = a.Show
		case "new":
			run = a.New
		case "edit":
			run = a.Edit
		case "delete":
			run = a.Delete
		case "trash":
			run = a.Trash
		case "restore":
			run = a.Restore
		case "purge":
			run = a.Purge
		case "empty":
			run = a.EmptyTrash
		case "drafts":
			run = a.Drafts
		case "recover":
			run = a.Recover
		case "summary":
			run = a.Summary
		case "tags":
			run = a.Tags
		case "usage":
			run = a.Usage
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if err := run(ctx, args); err != nil {
			printlnFn(describeError(err))
		}
	}
}

var errUsage = errors.New("usage")

// usageError reports wrong command arguments.
func usageError(usage string) error {
	return fmt.Errorf("%w: %s", errUsage, usage)
}

// describeError turns a command error into a message for the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return "Usage" + strings.TrimPrefix(err.Error(), "usage")
	case errors.Is(err, common.ErrorUnauthorized):
		return "Error: invalid email or password"
	case errors.Is(err, common.ErrAuthenticationRequired):
		return "Error: please log in"
	case errors.Is(err, common.ErrAIUnavailable):
		return "Error: the assistant is not available"
	}
	return "Error: " + err.Error()
}
