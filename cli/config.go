package main

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	envconfigPrefix = "SWEETSHOP"
	envAPIAddress   = "SWEETSHOP_API_ADDRESS"
	envHome         = "SWEETSHOP_HOME"

	tokenStoreFile    = "file"
	tokenStoreRedis   = "redis"
	tokenStoreMongoDB = "mongodb"
)

type config struct {
	APIAddress string `envconfig:"API_ADDRESS" default:"http://localhost:3000/api"` // nolint: lll
	TokenStore string `envconfig:"TOKEN_STORE" default:"file"`
	// envconfig would fall back to $HOME if this were processed with the rest
	Home       string `ignored:"true"`
	Insecure   bool   `envconfig:"INSECURE"`
}

// getConfig returns configuration from the environment, overridden by any
// global flags that were set.
func getConfig(c *cli.Context) (config, error) {
	cfg := config{}
	if err := envconfig.Process(envconfigPrefix, &cfg); err != nil {
		return cfg, errors.Wrap(err, "error getting configuration from environment")
	}
	cfg.Home = os.Getenv(envHome)
	if c != nil {
		if c.IsSet(flagServer) {
			cfg.APIAddress = c.String(flagServer)
		}
		if c.IsSet(flagInsecure) {
			cfg.Insecure = c.Bool(flagInsecure)
		}
	}
	switch cfg.TokenStore {
	case tokenStoreFile, tokenStoreRedis, tokenStoreMongoDB:
	default:
		return cfg, errors.Errorf(
			"unknown token store %q; supported token stores: %s, %s, %s",
			cfg.TokenStore,
			tokenStoreFile,
			tokenStoreRedis,
			tokenStoreMongoDB,
		)
	}
	return cfg, nil
}
