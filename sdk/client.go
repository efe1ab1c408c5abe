// Package sdk is the entry point to the storefront API client. An APIClient
// bundles the specialized clients, all of which share one credential source
// and one rejection notifier.
package sdk

import (
	"github.com/krancour/sweetshop/sdk/authn"
	"github.com/krancour/sweetshop/sdk/catalog"
	"github.com/krancour/sweetshop/sdk/restmachinery"
)

// APIClient is the root of a tree of more specialized API clients.
type APIClient interface {
	// Sessions returns a specialized client for logging in and registering.
	Sessions() authn.SessionsClient
	// Sweets returns a specialized client for browsing the catalog.
	Sweets() catalog.SweetsClient
	// OnCredentialRejected registers a listener that is notified whenever any
	// request made through this client is rejected with a 401. It returns a
	// function that unregisters the listener.
	OnCredentialRejected(restmachinery.RejectionListener) func()
}

type apiClient struct {
	rejections     *restmachinery.RejectionNotifier
	sessionsClient authn.SessionsClient
	sweetsClient   catalog.SweetsClient
}

// NewAPIClient returns an APIClient for the API at the given address. Every
// request it makes reads the given TokenSource at dispatch time.
func NewAPIClient(
	apiAddress string,
	tokens restmachinery.TokenSource,
	opts *restmachinery.APIClientOptions,
) APIClient {
	rejections := restmachinery.NewRejectionNotifier()
	baseClient := restmachinery.NewBaseClient(
		apiAddress,
		tokens,
		rejections,
		opts,
	)
	return &apiClient{
		rejections:     rejections,
		sessionsClient: authn.NewSessionsClientFromBase(baseClient),
		sweetsClient:   catalog.NewSweetsClientFromBase(baseClient),
	}
}

func (a *apiClient) Sessions() authn.SessionsClient {
	return a.sessionsClient
}

func (a *apiClient) Sweets() catalog.SweetsClient {
	return a.sweetsClient
}

func (a *apiClient) OnCredentialRejected(
	listener restmachinery.RejectionListener,
) func() {
	return a.rejections.Subscribe(listener)
}
