package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/krancour/sweetshop/internal/access"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var whoAmICommand = &cli.Command{
	Name:  "whoami",
	Usage: "Show the account you are logged in as",
	Flags: []cli.Flag{
		cliFlagOutput,
	},
	Action: whoAmI,
}

func whoAmI(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	shop, err := getStorefront(c)
	if err != nil {
		return err
	}

	if err = access.Require(
		c.Context,
		shop.session,
		access.Requirement{},
		shop.navigator,
	); err != nil {
		return err
	}

	user, err := shop.session.LoadProfile(c.Context)
	if err != nil {
		return err
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow("ID", "EMAIL", "ROLE")
		table.AddRow(user.ID, user.Email, user.Role)
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(user)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from whoami operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(user, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from whoami operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
