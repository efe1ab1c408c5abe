package main

import "github.com/urfave/cli/v2"

const (
	flagEmail    = "email"
	flagInsecure = "insecure"
	flagMaxPrice = "max-price"
	flagMinPrice = "min-price"
	flagName     = "name"
	flagOutput   = "output"
	flagPassword = "password"
	flagServer   = "server"
	flagVerbose  = "verbose"
)

var (
	cliFlagOutput = &cli.StringFlag{
		Name:    flagOutput,
		Aliases: []string{"o"},
		Usage: "Return output in the specified format; supported formats: table, " +
			"yaml, json",
		Value: "table",
	}
	cliFlagEmail = &cli.StringFlag{
		Name:    flagEmail,
		Aliases: []string{"e"},
		Usage:   "The account's email address; prompted for if not specified",
	}
	cliFlagPassword = &cli.StringFlag{
		Name:    flagPassword,
		Aliases: []string{"p"},
		Usage:   "The account's password; prompted for if not specified",
	}
)
