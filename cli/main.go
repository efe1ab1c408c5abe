package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/krancour/sweetshop/internal/signals"
	"github.com/krancour/sweetshop/internal/version"
	"github.com/urfave/cli/v2"
)

func main() {
	// glog registers its flags with the standard library's flag package; they
	// are parsed here so logging is configured before any command runs
	flag.CommandLine.Parse([]string{}) // nolint: errcheck
	app := cli.NewApp()
	app.Name = "sweetshop"
	app.Usage = "Browse the sweet shop from your terminal"
	app.Version = fmt.Sprintf(
		"%s -- commit %s",
		version.Version(),
		version.Commit(),
	)
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagServer,
			Aliases: []string{"s"},
			Usage: "Use the storefront API at the specified address; overrides " +
				envAPIAddress,
		},
		&cli.BoolFlag{
			Name:    flagInsecure,
			Aliases: []string{"k"},
			Usage:   "Allow insecure API server connections when using TLS",
		},
		&cli.BoolFlag{
			Name:  flagVerbose,
			Usage: "Log requests and session changes to stderr",
		},
	}
	app.Before = configureLogging
	app.Commands = []*cli.Command{
		adminCommand,
		loginCommand,
		logoutCommand,
		registerCommand,
		sweetsCommand,
		whoAmICommand,
	}
	fmt.Println()
	if err := app.RunContext(signals.Context(), os.Args); err != nil {
		fmt.Printf("\n%s\n\n", err)
		os.Exit(1)
	}
	fmt.Println()
}

func configureLogging(c *cli.Context) error {
	if !c.Bool(flagVerbose) {
		return nil
	}
	if err := flag.Set("logtostderr", "true"); err != nil {
		return err
	}
	return flag.Set("v", "2")
}
