package main

import (
	"context"
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/krancour/sweetshop/internal/tokenstore"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newTestContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String(flagServer, "", "")
	set.Bool(flagInsecure, false, "")
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestGetConfig(t *testing.T) {
	testCases := []struct {
		name       string
		env        map[string]string
		args       []string
		assertions func(config, error)
	}{
		{
			name: "defaults",
			assertions: func(cfg config, err error) {
				require.NoError(t, err)
				require.Equal(t, "http://localhost:3000/api", cfg.APIAddress)
				require.Equal(t, tokenStoreFile, cfg.TokenStore)
				require.False(t, cfg.Insecure)
			},
		},
		{
			name: "from environment",
			env: map[string]string{
				"SWEETSHOP_API_ADDRESS": "https://shop.example.com/api",
				"SWEETSHOP_TOKEN_STORE": tokenStoreRedis,
				"SWEETSHOP_INSECURE":    "true",
			},
			assertions: func(cfg config, err error) {
				require.NoError(t, err)
				require.Equal(t, "https://shop.example.com/api", cfg.APIAddress)
				require.Equal(t, tokenStoreRedis, cfg.TokenStore)
				require.True(t, cfg.Insecure)
			},
		},
		{
			name: "flags override environment",
			env: map[string]string{
				"SWEETSHOP_API_ADDRESS": "https://shop.example.com/api",
			},
			args: []string{"--server", "http://127.0.0.1:8080", "--insecure"},
			assertions: func(cfg config, err error) {
				require.NoError(t, err)
				require.Equal(t, "http://127.0.0.1:8080", cfg.APIAddress)
				require.True(t, cfg.Insecure)
			},
		},
		{
			name: "unknown token store",
			env: map[string]string{
				"SWEETSHOP_TOKEN_STORE": "cookie-jar",
			},
			assertions: func(_ config, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "unknown token store")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			for k, v := range testCase.env {
				os.Setenv(k, v)
			}
			defer func() {
				for k := range testCase.env {
					os.Unsetenv(k)
				}
			}()
			testCase.assertions(getConfig(newTestContext(t, testCase.args...)))
		})
	}
}

func TestGetTokenBackendFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "sweetshop-cli-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	backend, err := getTokenBackend(
		context.Background(),
		config{
			TokenStore: tokenStoreFile,
			Home:       dir,
		},
	)
	require.NoError(t, err)
	fileBackend, ok := backend.(*tokenstore.FileBackend)
	require.True(t, ok)
	require.Equal(
		t,
		filepath.Join(dir, tokenstore.DefaultFileName),
		fileBackend.Path(),
	)
}

func TestGetTokenBackendUnreachableMongoDB(t *testing.T) {
	const key = "SWEETSHOP_MONGODB_CONNECTION_STRING"
	os.Setenv(
		key,
		"mongodb://127.0.0.1:1/x?serverSelectionTimeoutMS=200&connectTimeoutMS=200",
	)
	defer os.Unsetenv(key)
	backend, err := getTokenBackend(
		context.Background(),
		config{TokenStore: tokenStoreMongoDB},
	)
	require.NoError(t, err)
	_, ok := backend.(*tokenstore.MongoBackend)
	require.True(t, ok)
	// Storage errors degrade to "no token" rather than failing the command
	store := tokenstore.NewStore(backend)
	_, ok = store.Read()
	require.False(t, ok)
	store.Write("t1")
	require.True(t, store.ClearIf("t1"))
	store.Clear()
}

func TestValidateOutputFormat(t *testing.T) {
	for _, format := range []string{"table", "YAML", "json"} {
		require.NoError(t, validateOutputFormat(format))
	}
	require.Error(t, validateOutputFormat("xml"))
}
