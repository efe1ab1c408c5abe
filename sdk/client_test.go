package sdk_test

import (
	"context"
	"sync"
	"testing"

	"github.com/krancour/sweetshop/internal/apitest"
	"github.com/krancour/sweetshop/internal/tokenstore"
	"github.com/krancour/sweetshop/sdk"
	"github.com/krancour/sweetshop/sdk/authn"
	"github.com/krancour/sweetshop/sdk/restmachinery"
	"github.com/stretchr/testify/require"
)

func TestAPIClient(t *testing.T) {
	server := apitest.NewServer()
	defer server.Close()
	server.AddUser("a@b.c", "pw", authn.RoleUser)

	tokens := tokenstore.NewStore(tokenstore.NewMemoryBackend())
	client := sdk.NewAPIClient(server.URL, tokens, nil)
	require.NotNil(t, client.Sessions())
	require.NotNil(t, client.Sweets())

	var mu sync.Mutex
	rejections := []restmachinery.CredentialRejection{}
	unsubscribe := client.OnCredentialRejected(
		func(r restmachinery.CredentialRejection) {
			mu.Lock()
			defer mu.Unlock()
			rejections = append(rejections, r)
		},
	)

	result, err := client.Sessions().Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	tokens.Write(result.Token)

	// Both specialized clients present the stored token
	_, err = client.Sweets().List(context.Background())
	require.NoError(t, err)
	requests := server.Requests()
	require.Equal(t, "", requests[0].Authorization)
	require.Equal(
		t,
		"Bearer "+result.Token,
		requests[len(requests)-1].Authorization,
	)

	server.RevokeToken(result.Token)
	_, err = client.Sweets().List(context.Background())
	require.Error(t, err)
	mu.Lock()
	require.Len(t, rejections, 1)
	require.Equal(t, result.Token, rejections[0].Token)
	require.Equal(t, "sweets", rejections[0].Path)
	mu.Unlock()

	unsubscribe()
	_, err = client.Sessions().WhoAmI(context.Background())
	require.Error(t, err)
	mu.Lock()
	require.Len(t, rejections, 1)
	mu.Unlock()
}
