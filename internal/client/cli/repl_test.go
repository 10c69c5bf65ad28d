package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) rec(name string, args []string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return nil
}

func (f *fakeExec) Home(_ context.Context, a []string) error     { return f.rec("home", a) }
func (f *fakeExec) Visas(_ context.Context, a []string) error    { return f.rec("visas", a) }
func (f *fakeExec) Visa(_ context.Context, a []string) error     { return f.rec("visa", a) }
func (f *fakeExec) Apply(_ context.Context, a []string) error    { return f.rec("apply", a) }
func (f *fakeExec) Add(_ context.Context, a []string) error      { return f.rec("add", a) }
func (f *fakeExec) MyVisas(_ context.Context, a []string) error  { return f.rec("my-visas", a) }
func (f *fakeExec) Edit(_ context.Context, a []string) error     { return f.rec("edit", a) }
func (f *fakeExec) Delete(_ context.Context, a []string) error   { return f.rec("delete", a) }
func (f *fakeExec) MyApps(_ context.Context, a []string) error   { return f.rec("my-apps", a) }
func (f *fakeExec) Cancel(_ context.Context, a []string) error   { return f.rec("cancel", a) }
func (f *fakeExec) Google(_ context.Context, a []string) error   { return f.rec("google", a) }
func (f *fakeExec) Register(_ context.Context, a []string) error { return f.rec("register", a) }
func (f *fakeExec) Profile(_ context.Context, a []string) error  { return f.rec("profile", a) }
func (f *fakeExec) Theme(_ context.Context, a []string) error    { return f.rec("theme", a) }

func (f *fakeExec) Login(_ context.Context, a []string) error {
	f.loggedIn = true
	return f.rec("login", a)
}

func (f *fakeExec) Logout(_ context.Context, a []string) error {
	f.loggedIn = false
	return f.rec("logout", a)
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"visas Work Visa",
		"visa 42",
		"apply",
		"my-apps united",
		"cancel a1",
		"",
		"foobar",
		"logout",
		"exit",
		"home",
	}, "\n")

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "guest" }, rdr(input), &out)

	assert.Equal(t, []string{
		"login",
		"visas Work Visa",
		"visa 42",
		"apply",
		"my-apps united",
		"cancel a1",
		"logout",
	}, exec.calls)

	s := out.String()
	assert.Contains(t, s, "borderease (guest) > ")
	assert.Contains(t, s, helpGuest)
	assert.Contains(t, s, helpMember)
	assert.Contains(t, s, "Unknown command: foobar")
	assert.Contains(t, s, "Bye!")
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, rdr("home\nvisas"), &out)
	assert.Equal(t, []string{"home", "visas"}, exec.calls)
}
