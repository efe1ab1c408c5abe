package main

import (
	"fmt"

	"github.com/krancour/sweetshop/internal/access"
	"github.com/urfave/cli/v2"
)

var adminCommand = &cli.Command{
	Name:  "admin",
	Usage: "Manage the catalog; requires the Admin role",
	Subcommands: []*cli.Command{
		{
			Name:  "inventory",
			Usage: "Show stock levels for every sweet in the catalog",
			Flags: []cli.Flag{
				cliFlagOutput,
			},
			Action: adminInventory,
		},
	},
}

func adminInventory(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	shop, err := getStorefront(c)
	if err != nil {
		return err
	}

	// A restored session carries no role until its profile is loaded
	if state := shop.session.State(); state.IsAuthenticated() &&
		!state.Verified() {
		if _, err = shop.session.LoadProfile(c.Context); err != nil {
			return err
		}
	}

	if err = access.Require(
		c.Context,
		shop.session,
		access.Requirement{RequireAdmin: true},
		shop.navigator,
	); err != nil {
		return err
	}

	sweets, err := shop.client.Sweets().List(c.Context)
	if err != nil {
		return err
	}

	if len(sweets) == 0 {
		fmt.Println("The catalog is empty.")
		return nil
	}

	return printSweets(output, sweets, true)
}
