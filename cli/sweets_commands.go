package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/krancour/sweetshop/internal/access"
	"github.com/krancour/sweetshop/sdk/catalog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var sweetsCommand = &cli.Command{
	Name:  "sweets",
	Usage: "Browse the catalog",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List every sweet in the catalog",
			Flags: []cli.Flag{
				cliFlagOutput,
			},
			Action: sweetsList,
		},
		{
			Name:  "search",
			Usage: "Search the catalog",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagName,
					Aliases: []string{"n"},
					Usage:   "Only sweets whose name contains the specified text",
				},
				&cli.Float64Flag{
					Name:  flagMinPrice,
					Usage: "Only sweets priced at or above the specified amount",
				},
				&cli.Float64Flag{
					Name:  flagMaxPrice,
					Usage: "Only sweets priced at or below the specified amount",
				},
				cliFlagOutput,
			},
			Action: sweetsSearch,
		},
	},
}

func sweetsList(c *cli.Context) error {
	return browse(c, func(shop *storefront) ([]catalog.Sweet, error) {
		return shop.client.Sweets().List(c.Context)
	})
}

func sweetsSearch(c *cli.Context) error {
	opts := catalog.SearchOptions{
		Name: c.String(flagName),
	}
	if c.IsSet(flagMinPrice) {
		minPrice := c.Float64(flagMinPrice)
		opts.MinPrice = &minPrice
	}
	if c.IsSet(flagMaxPrice) {
		maxPrice := c.Float64(flagMaxPrice)
		opts.MaxPrice = &maxPrice
	}
	if opts.MinPrice != nil && opts.MaxPrice != nil &&
		*opts.MinPrice > *opts.MaxPrice {
		return errors.Errorf("--%s exceeds --%s", flagMinPrice, flagMaxPrice)
	}
	return browse(c, func(shop *storefront) ([]catalog.Sweet, error) {
		return shop.client.Sweets().Search(c.Context, opts)
	})
}

func browse(
	c *cli.Context,
	fetch func(*storefront) ([]catalog.Sweet, error),
) error {
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

	sweets, err := fetch(shop)
	if err != nil {
		return err
	}

	if len(sweets) == 0 {
		fmt.Println("No sweets found.")
		return nil
	}

	return printSweets(output, sweets, false)
}

func printSweets(output string, sweets []catalog.Sweet, inventory bool) error {
	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		if inventory {
			table.AddRow("ID", "NAME", "PRICE", "QUANTITY", "IN STOCK?", "ADDED")
		} else {
			table.AddRow("ID", "NAME", "PRICE", "IN STOCK?")
		}
		for _, sweet := range sweets {
			price := fmt.Sprintf("%.2f", sweet.Price)
			if inventory {
				table.AddRow(
					sweet.ID,
					sweet.Name,
					price,
					sweet.Quantity,
					sweet.InStock(),
					sweet.CreatedAt,
				)
			} else {
				table.AddRow(sweet.ID, sweet.Name, price, sweet.InStock())
			}
		}
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(sweets)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from sweets operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(sweets, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from sweets operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
