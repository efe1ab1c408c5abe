package main

import (
	"fmt"
	"io"

	"github.com/krancour/sweetshop/internal/navigation"
)

// terminalNavigator carries out navigation commands by telling the user
// which command to run next.
type terminalNavigator struct {
	out io.Writer
}

func newTerminalNavigator(out io.Writer) *terminalNavigator {
	return &terminalNavigator{
		out: out,
	}
}

func (t *terminalNavigator) Navigate(b navigation.Boundary) {
	switch b {
	case navigation.Login:
		fmt.Fprintln(
			t.out,
			"You are not logged in. Please use `sweetshop login` to continue.",
		)
	case navigation.Register:
		fmt.Fprintln(
			t.out,
			"Please use `sweetshop register` to create an account.",
		)
	case navigation.Home: // Also navigation.Unauthorized
		fmt.Fprintln(
			t.out,
			"You are not permitted to do that. Use `sweetshop sweets list` to "+
				"browse the shop.",
		)
	case navigation.Admin:
		fmt.Fprintln(t.out, "Use `sweetshop admin` to manage the catalog.")
	}
}
