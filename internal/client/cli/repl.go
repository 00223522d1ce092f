package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
	Health(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a. It returns
// on EOF or when the user types "exit" or "quit". Command errors are already
// reported by the handlers and do not stop the loop.
//
//	Not logged in: help, signup, login, health, exit
//	Logged in:     help, whoami, logout, health, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("feed %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, logout, health, exit")
			} else {
				printlnFn("Available commands: signup, login, health, exit")
			}
		case "signup", "register":
			_ = a.Signup(ctx)
		case "login":
			_ = a.Login(ctx)
		case "whoami", "me":
			if !a.isLoggedIn() {
				printlnFn("Not logged in.")
				continue
			}
			_ = a.WhoAmI(ctx)
		case "logout":
			if !a.isLoggedIn() {
				printlnFn("Not logged in.")
				continue
			}
			_ = a.Logout(ctx)
		case "health":
			_ = a.Health(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
