package catalog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/krancour/sweetshop/sdk/restmachinery"
)

// Sweet is an item offered by the storefront.
type Sweet struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InStock returns true if at least one unit of the Sweet is available.
func (s Sweet) InStock() bool {
	return s.Quantity > 0
}

// SearchOptions narrows a search of the catalog. Zero values are omitted
// from the request.
type SearchOptions struct {
	Name     string
	MinPrice *float64
	MaxPrice *float64
}

func (s SearchOptions) queryParams() map[string]string {
	params := map[string]string{}
	if s.Name != "" {
		params["name"] = s.Name
	}
	if s.MinPrice != nil {
		params["minPrice"] = strconv.FormatFloat(*s.MinPrice, 'f', -1, 64)
	}
	if s.MaxPrice != nil {
		params["maxPrice"] = strconv.FormatFloat(*s.MaxPrice, 'f', -1, 64)
	}
	return params
}

// SweetsClient is the specialized client for browsing the catalog. Every
// operation requires a bearer credential.
type SweetsClient interface {
	// List returns every Sweet in the catalog.
	List(context.Context) ([]Sweet, error)
	// Search returns the Sweets matching the given options.
	Search(context.Context, SearchOptions) ([]Sweet, error)
}

type sweetsClient struct {
	*restmachinery.BaseClient
}

// NewSweetsClient returns a specialized client for browsing the catalog.
func NewSweetsClient(
	apiAddress string,
	tokens restmachinery.TokenSource,
	opts *restmachinery.APIClientOptions,
) SweetsClient {
	return NewSweetsClientFromBase(
		restmachinery.NewBaseClient(apiAddress, tokens, nil, opts),
	)
}

// NewSweetsClientFromBase returns a specialized client for browsing the
// catalog that shares the given BaseClient.
func NewSweetsClientFromBase(
	baseClient *restmachinery.BaseClient,
) SweetsClient {
	return &sweetsClient{
		BaseClient: baseClient,
	}
}

func (s *sweetsClient) List(ctx context.Context) ([]Sweet, error) {
	sweets := []Sweet{}
	err := s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:  http.MethodGet,
			Path:    "sweets",
			RespObj: &sweets,
		},
	)
	return sweets, err
}

func (s *sweetsClient) Search(
	ctx context.Context,
	opts SearchOptions,
) ([]Sweet, error) {
	sweets := []Sweet{}
	err := s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "sweets/search",
			QueryParams: opts.queryParams(),
			RespObj:     &sweets,
		},
	)
	return sweets, err
}
