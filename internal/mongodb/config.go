package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const envconfigPrefix = "SWEETSHOP_MONGODB"

// Config represents common configuration options for a MongoDB connection.
// If ConnectionString is set, the individual connection fields are ignored.
type Config struct {
	ConnectionString string `envconfig:"CONNECTION_STRING"`
	Host             string `envconfig:"HOST" default:"localhost"`
	Port             int    `envconfig:"PORT" default:"27017"`
	Database         string `envconfig:"DATABASE" default:"sweetshop"`
	ReplicaSet       string `envconfig:"REPLICA_SET"`
	Username         string `envconfig:"USERNAME"`
	Password         string `envconfig:"PASSWORD"`
	Collection       string `envconfig:"COLLECTION"`
}

// GetConfig returns MongoDB connection configuration specified by
// environment variables
func GetConfig() (Config, error) {
	c := Config{}
	err := envconfig.Process(envconfigPrefix, &c)
	return c, errors.Wrap(
		err,
		"error getting mongo configuration from environment",
	)
}

func (c Config) connectionString() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	var userInfo string
	if c.Username != "" {
		userInfo = url.UserPassword(c.Username, c.Password).String() + "@"
	}
	connectionString := fmt.Sprintf(
		"mongodb://%s%s:%d/%s",
		userInfo,
		c.Host,
		c.Port,
		c.Database,
	)
	if c.ReplicaSet != "" {
		connectionString =
			fmt.Sprintf("%s?replicaSet=%s", connectionString, c.ReplicaSet)
	}
	return connectionString
}

// Database returns a handle on the MongoDB database described by the given
// Config. The driver connects in the background, so an unreachable server is
// not an error here; operations on the handle fail until it is reachable.
func Database(ctx context.Context, c Config) (*mongo.Database, error) {
	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()
	// This client's settings favor consistency over speed
	client, err := mongo.Connect(
		connectCtx,
		options.Client().ApplyURI(c.connectionString()).SetWriteConcern(
			writeconcern.New(writeconcern.WMajority()),
		).SetReadConcern(readconcern.Majority()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to mongo")
	}
	return client.Database(c.Database), nil
}
