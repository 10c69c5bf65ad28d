package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Home(ctx context.Context, args []string) error
	Visas(ctx context.Context, args []string) error
	Visa(ctx context.Context, args []string) error
	Apply(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	MyVisas(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	MyApps(ctx context.Context, args []string) error
	Cancel(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Google(ctx context.Context, args []string) error
	Register(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error
	Theme(ctx context.Context, args []string) error
}

const (
	helpGuest = `Commands:
  home                 latest visas
  visas [type]         all visas, optionally filtered by visa type
  visa <id>            visa details
  login | google       sign in with email/password or Google
  register             create an account
  theme                toggle light/dark theme
  exit                 leave`
	helpMember = `Commands:
  home                 latest visas
  visas [type]         all visas, optionally filtered by visa type
  visa <id>            visa details
  apply                apply for the visa shown by 'visa <id>'
  add                  add a visa
  my-visas             visas you added
  edit <id>            edit one of your visas
  delete <id>          delete one of your visas
  my-apps [search]     your applications, optionally searched by country
  cancel <id>          cancel one of your applications
  profile              show or update your profile
  logout               sign out
  theme                toggle light/dark theme
  exit                 leave`
)

// runREPL reads commands until EOF or exit. Command errors are reported by
// the handlers themselves; the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "borderease (%s) > ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (len(line) == 0 || !errors.Is(err, io.EOF)) {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		var handler func(context.Context, []string) error
		switch cmd {
		case "help", "?":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpMember)
			} else {
				fmt.Fprintln(w, helpGuest)
			}
		case "home":
			handler = a.Home
		case "visas":
			handler = a.Visas
		case "visa":
			handler = a.Visa
		case "apply":
			handler = a.Apply
		case "add":
			handler = a.Add
		case "my-visas":
			handler = a.MyVisas
		case "edit":
			handler = a.Edit
		case "delete":
			handler = a.Delete
		case "my-apps":
			handler = a.MyApps
		case "cancel":
			handler = a.Cancel
		case "login":
			handler = a.Login
		case "google":
			handler = a.Google
		case "register":
			handler = a.Register
		case "logout":
			handler = a.Logout
		case "profile":
			handler = a.Profile
		case "theme":
			handler = a.Theme
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if handler != nil {
			_ = handler(ctx, args)
		}
		if err != nil {
			return
		}
	}
}
