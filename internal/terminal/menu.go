package terminal

import (
	"errors"
	"strings"

	"github.com/autopeer-io/scootshare/internal/protocol"
)

// ErrQuit is returned when the operator leaves the terminal.
var ErrQuit = errors.New("terminal: quit")

// View is the menu the terminal shows.
type View string

const (
	ViewWelcome   View = "Welcome"
	ViewUserMenu  View = "UserMenu"
	ViewAdminMenu View = "AdminMenu"
)

// Option is one menu entry.
type Option struct {
	Key   string
	Label string

	// Command is published on user-command when the option is chosen.
	Command protocol.Command

	// Quit ends the terminal.
	Quit bool
}

type menu struct {
	title   string
	options []Option
}

var menus = map[View]menu{
	ViewWelcome: {
		title: "Welcome",
		options: []Option{
			{Key: "1", Label: "Login as User", Command: protocol.LoginUser},
			{Key: "2", Label: "Login as Admin", Command: protocol.LoginAdmin},
			{Key: "0", Label: "Exit", Quit: true},
		},
	},
	ViewUserMenu: {
		title: "User Menu",
		options: []Option{
			{Key: "1", Label: "Rent scooter", Command: protocol.ReceivedOpenRequest},
			{Key: "2", Label: "End ride", Command: protocol.ReceivedCloseRequest},
			{Key: "3", Label: "Logout", Command: protocol.Logout},
		},
	},
	ViewAdminMenu: {
		title: "Admin Menu",
		options: []Option{
			{Key: "1", Label: "Request scooter info", Command: protocol.RequestInfo},
			{Key: "2", Label: "Deactivate scooter", Command: protocol.Deactivate},
			{Key: "3", Label: "Activate scooter", Command: protocol.Activate},
			{Key: "4", Label: "Logout", Command: protocol.Logout},
		},
	},
}

// Choose maps operator input to an option of view.
func Choose(view View, input string) (Option, bool) {
	input = strings.TrimSpace(input)
	for _, o := range menus[view].options {
		if o.Key == input {
			return o, true
		}
	}
	return Option{}, false
}
