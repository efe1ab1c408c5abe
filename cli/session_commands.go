package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/krancour/sweetshop/internal/session"
	"github.com/krancour/sweetshop/sdk/authn"
	"github.com/krancour/sweetshop/sdk/meta"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/ssh/terminal"
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Log in to the sweet shop",
	Flags: []cli.Flag{
		cliFlagEmail,
		cliFlagPassword,
	},
	Action: login,
}

var registerCommand = &cli.Command{
	Name:  "register",
	Usage: "Create a sweet shop account and log in to it",
	Flags: []cli.Flag{
		cliFlagEmail,
		cliFlagPassword,
	},
	Action: register,
}

var logoutCommand = &cli.Command{
	Name:   "logout",
	Usage:  "Log out of the sweet shop",
	Action: logout,
}

func login(c *cli.Context) error {
	return establishSession(c, "log in", (*session.Store).Authenticate)
}

func register(c *cli.Context) error {
	return establishSession(c, "register", (*session.Store).Register)
}

func establishSession(
	c *cli.Context,
	verb string,
	establish func(
		*session.Store,
		context.Context,
		string,
		string,
	) (authn.User, error),
) error {
	email, password, err := getCredentials(c)
	if err != nil {
		return err
	}
	shop, err := getStorefront(c)
	if err != nil {
		return err
	}
	user, err := establish(shop.session, c.Context, email, password)
	if err != nil {
		return errors.Errorf("Unable to %s: %s", verb, meta.Message(err))
	}
	fmt.Printf("You are logged in as %s.\n", user.Email)
	if user.IsAdmin() {
		fmt.Println("Your account can manage the catalog.")
	}
	return nil
}

func getCredentials(c *cli.Context) (string, string, error) {
	email := c.String(flagEmail)
	password := c.String(flagPassword)
	if email != "" && password != "" {
		return email, password, nil
	}
	if !terminal.IsTerminal(int(os.Stdin.Fd())) {
		return "", "", errors.Errorf(
			"--%s and --%s are required when not running interactively",
			flagEmail,
			flagPassword,
		)
	}
	for email == "" {
		prompt := &survey.Input{
			Message: "Email",
		}
		if err := survey.AskOne(prompt, &email); err != nil {
			return "", "", err
		}
	}
	for password == "" {
		prompt := &survey.Password{
			Message: "Password",
		}
		if err := survey.AskOne(prompt, &password); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

func logout(c *cli.Context) error {
	shop, err := getStorefront(c)
	if err != nil {
		return err
	}
	wasAuthenticated := shop.session.State().IsAuthenticated()
	shop.session.Terminate()
	if wasAuthenticated {
		fmt.Println("You have been logged out.")
	} else {
		fmt.Println("You were not logged in.")
	}
	return nil
}
