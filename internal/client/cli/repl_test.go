package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	failOn   string

	calls []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeExec) Signup(ctx context.Context) error { return f.record("signup") }
func (f *fakeExec) Login(ctx context.Context) error {
	err := f.record("login")
	if err == nil {
		f.loggedIn = true
	}
	return err
}
func (f *fakeExec) WhoAmI(ctx context.Context) error { return f.record("whoami") }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Health(ctx context.Context) error { return f.record("health") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	input := rdr(strings.Join([]string{
		"help",
		"whoami",
		"signup",
		"login",
		"help",
		"me",
		"",
		"health",
		"logout",
		"foobar",
		"exit",
		"login",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, input)

	require.Equal(t, []string{"signup", "login", "whoami", "health", "logout"}, exec.calls)
	require.Contains(t, *out, "Available commands: signup, login, health, exit")
	require.Contains(t, *out, "Available commands: whoami, logout, health, exit")
	require.Contains(t, *out, "Not logged in.")
	require.Contains(t, *out, "Unknown command: foobar")
	require.Contains(t, *out, "feed status>")
	require.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("health"))

	require.Equal(t, []string{"health"}, exec.calls)
}

func TestRunREPL_CommandErrorsDoNotStopLoop(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{failOn: "login"}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("login\nlogout\nhealth\nquit\n"))

	require.Equal(t, []string{"login", "health"}, exec.calls)
}
