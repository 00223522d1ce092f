package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/s-fanou/feed/internal/client/client"
)

// getSimpleText and getPassword are swapped out in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for email, name and password and creates an account.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	id, err := a.api.Signup(ctx, email, name, string(password))
	if err != nil {
		a.report(err)
		return err
	}

	fmt.Fprintf(a.out, "User created! id=%s\n", id)
	return nil
}

// Login prompts for credentials and keeps the session token in memory.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	res, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		a.report(err)
		return err
	}

	a.token = res.Token
	a.email = email
	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

// WhoAmI shows the profile the current token belongs to.
func (a *App) WhoAmI(ctx context.Context) error {
	p, err := a.api.Me(ctx, a.token)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.forget()
		}
		a.report(err)
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> id=%s\n", p.Name, p.Email, p.UserID)
	return nil
}

// Logout asks the server to revoke the token and forgets it locally either way.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx, a.token)
	a.forget()
	if err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) Health(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintln(a.out, "Server is up.")
	return nil
}

func (a *App) forget() {
	a.token = ""
	a.email = ""
}

func (a *App) report(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintln(a.out, "Error:", apiErr.Message)
		for _, f := range apiErr.Fields {
			fmt.Fprintf(a.out, "  %s: %s\n", f.Param, f.Msg)
		}
		return
	}
	if errors.Is(err, client.ErrUnavailable) {
		fmt.Fprintln(a.out, "Error: server unavailable")
		return
	}
	fmt.Fprintln(a.out, "Error:", err)
}
