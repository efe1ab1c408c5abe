package main

import (
	"context"
	"os"

	"github.com/krancour/sweetshop/internal/mongodb"
	"github.com/krancour/sweetshop/internal/navigation"
	"github.com/krancour/sweetshop/internal/redis"
	"github.com/krancour/sweetshop/internal/session"
	"github.com/krancour/sweetshop/internal/tokenstore"
	"github.com/krancour/sweetshop/sdk"
	"github.com/krancour/sweetshop/sdk/restmachinery"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// storefront bundles everything a command needs to talk to the API on
// behalf of the user's session.
type storefront struct {
	client    sdk.APIClient
	session   *session.Store
	navigator navigation.Navigator
}

func getStorefront(c *cli.Context) (*storefront, error) {
	cfg, err := getConfig(c)
	if err != nil {
		return nil, err
	}
	backend, err := getTokenBackend(c.Context, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "error initializing token storage")
	}
	tokens := tokenstore.NewStore(backend)
	client := sdk.NewAPIClient(
		cfg.APIAddress,
		tokens,
		&restmachinery.APIClientOptions{
			AllowInsecureConnections: cfg.Insecure,
		},
	)
	navigator := newTerminalNavigator(os.Stderr)
	store := session.NewStore(client.Sessions(), tokens, navigator)
	client.OnCredentialRejected(store.HandleRejection)
	store.Restore()
	return &storefront{
		client:    client,
		session:   store,
		navigator: navigator,
	}, nil
}

func getTokenBackend(
	ctx context.Context,
	cfg config,
) (tokenstore.Backend, error) {
	switch cfg.TokenStore {
	case tokenStoreRedis:
		redisConfig, err := redis.GetConfig()
		if err != nil {
			return nil, err
		}
		return tokenstore.NewRedisBackend(
			redis.Client(redisConfig),
			redisConfig.Key,
		), nil
	case tokenStoreMongoDB:
		mongoConfig, err := mongodb.GetConfig()
		if err != nil {
			return nil, err
		}
		database, err := mongodb.Database(ctx, mongoConfig)
		if err != nil {
			return nil, err
		}
		return tokenstore.NewMongoBackend(database, mongoConfig.Collection, ""), nil
	default:
		return tokenstore.NewDefaultFileBackend(cfg.Home)
	}
}
