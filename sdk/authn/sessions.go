package authn

import (
	"context"
	"net/http"

	"github.com/krancour/sweetshop/sdk/restmachinery"
)

// AuthResult is what the storefront API returns upon successful login or
// registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionsClient is the specialized client for establishing storefront
// sessions.
type SessionsClient interface {
	// Login exchanges an email and password for a token and user.
	Login(ctx context.Context, email string, password string) (AuthResult, error)
	// Register creates a new account and returns a token and user for it.
	Register(
		ctx context.Context,
		email string,
		password string,
	) (AuthResult, error)
	// WhoAmI returns the User associated with the credential currently held by
	// the token store.
	WhoAmI(context.Context) (User, error)
}

type sessionsClient struct {
	*restmachinery.BaseClient
}

// NewSessionsClient returns a specialized client for establishing storefront
// sessions.
func NewSessionsClient(
	apiAddress string,
	tokens restmachinery.TokenSource,
	opts *restmachinery.APIClientOptions,
) SessionsClient {
	return NewSessionsClientFromBase(
		restmachinery.NewBaseClient(apiAddress, tokens, nil, opts),
	)
}

// NewSessionsClientFromBase returns a specialized client for establishing
// storefront sessions that shares the given BaseClient.
func NewSessionsClientFromBase(
	baseClient *restmachinery.BaseClient,
) SessionsClient {
	return &sessionsClient{
		BaseClient: baseClient,
	}
}

func (s *sessionsClient) Login(
	ctx context.Context,
	email string,
	password string,
) (AuthResult, error) {
	return s.authenticate(ctx, "auth/login", email, password)
}

func (s *sessionsClient) Register(
	ctx context.Context,
	email string,
	password string,
) (AuthResult, error) {
	return s.authenticate(ctx, "auth/register", email, password)
}

func (s *sessionsClient) authenticate(
	ctx context.Context,
	path string,
	email string,
	password string,
) (AuthResult, error) {
	result := AuthResult{}
	err := s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPost,
			Path:   path,
			ReqBodyObj: Credentials{
				Email:    email,
				Password: password,
			},
			RespObj:          &result,
			RespSchemaLoader: authResultSchemaLoader,
		},
	)
	return result, err
}

func (s *sessionsClient) WhoAmI(ctx context.Context) (User, error) {
	profile := struct {
		User
		Wrapped *User `json:"user"`
	}{}
	if err := s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:           http.MethodGet,
			Path:             "auth/me",
			RespObj:          &profile,
			RespSchemaLoader: profileSchemaLoader,
		},
	); err != nil {
		return User{}, err
	}
	if profile.Wrapped != nil {
		return *profile.Wrapped, nil
	}
	return profile.User, nil
}
