// Package cli implements the interactive terminal client.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/s-fanou/feed/internal/client/client"
	"github.com/s-fanou/feed/internal/client/config"
)

type apiClient interface {
	Signup(ctx context.Context, email, name, password string) (string, error)
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Me(ctx context.Context, token string) (*client.Profile, error)
	Logout(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	api    apiClient
	reader *bufio.Reader
	out    io.Writer

	token string
	email string
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    client.New(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) isLoggedIn() bool { return a.token != "" }

func (a *App) status() string {
	if a.email == "" {
		return ""
	}
	return "(" + a.email + ") "
}

// Run starts the REPL and returns when the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to the feed CLI (type 'help' for commands)")
	if err := a.api.Ping(ctx); err != nil {
		printlnFn("Warning: server not reachable at", a.config.ServerURL)
	}
	runREPL(ctx, a, a.status, a.reader)
}
