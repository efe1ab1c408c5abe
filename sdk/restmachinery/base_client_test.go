package restmachinery

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/krancour/sweetshop/sdk/meta"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

type fakeTokenSource struct {
	mu    sync.Mutex
	token string
}

func (f *fakeTokenSource) Read() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeTokenSource) ClearIf(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" || f.token == token {
		f.token = ""
		return true
	}
	return false
}

func (f *fakeTokenSource) set(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func TestNewBaseClient(t *testing.T) {
	tokens := &fakeTokenSource{}
	b := NewBaseClient(
		"http://localhost:3000/api/",
		tokens,
		nil,
		&APIClientOptions{
			AllowInsecureConnections: true,
		},
	)
	require.Equal(t, "http://localhost:3000/api", b.APIAddress)
	require.Same(t, tokens, b.Tokens)
	require.NotNil(t, b.Rejections)
	require.IsType(t, &http.Transport{}, b.HTTPClient.Transport)
	require.IsType(
		t,
		&tls.Config{},
		b.HTTPClient.Transport.(*http.Transport).TLSClientConfig,
	)
	require.True(
		t,
		b.HTTPClient.Transport.(*http.Transport).TLSClientConfig.InsecureSkipVerify, // nolint: lll
	)
}

func TestSubmitRequestOutbound(t *testing.T) {
	testCases := []struct {
		name       string
		token      string
		assertions func(t *testing.T, r *http.Request)
	}{
		{
			name:  "token present",
			token: "test-token-123",
			assertions: func(t *testing.T, r *http.Request) {
				require.Equal(
					t,
					"Bearer test-token-123",
					r.Header.Get("Authorization"),
				)
			},
		},
		{
			name:  "token absent",
			token: "",
			assertions: func(t *testing.T, r *http.Request) {
				_, ok := r.Header["Authorization"]
				require.False(t, ok)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var received *http.Request
			server := httptest.NewServer(
				http.HandlerFunc(
					func(w http.ResponseWriter, r *http.Request) {
						received = r
						w.WriteHeader(http.StatusOK)
					},
				),
			)
			defer server.Close()
			b := NewBaseClient(
				server.URL,
				&fakeTokenSource{token: testCase.token},
				nil,
				nil,
			)
			err := b.ExecuteRequest(
				context.Background(),
				OutboundRequest{
					Method: http.MethodGet,
					Path:   "sweets",
				},
			)
			require.NoError(t, err)
			require.NotNil(t, received)
			require.Equal(t, DefaultContentType, received.Header.Get("Content-Type"))
			require.Equal(t, DefaultContentType, received.Header.Get("Accept"))
			require.NotEmpty(t, received.Header.Get(RequestIDHeader))
			testCase.assertions(t, received)
		})
	}
}

func TestSubmitRequestReadsTokenPerRequest(t *testing.T) {
	var authHeaders []string
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				authHeaders = append(authHeaders, r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusOK)
			},
		),
	)
	defer server.Close()
	tokens := &fakeTokenSource{}
	b := NewBaseClient(server.URL, tokens, nil, nil)
	req := OutboundRequest{
		Method: http.MethodGet,
		Path:   "sweets",
	}
	require.NoError(t, b.ExecuteRequest(context.Background(), req))
	tokens.set("t1")
	require.NoError(t, b.ExecuteRequest(context.Background(), req))
	require.Equal(t, []string{"", "Bearer t1"}, authHeaders)
}

func TestSubmitRequestQueryAndPath(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/sweets/search", r.URL.Path)
				require.Equal(t, "choc", r.URL.Query().Get("name"))
				require.Equal(t, "1.5", r.URL.Query().Get("minPrice"))
				_, ok := r.URL.Query()["maxPrice"]
				require.False(t, ok)
				w.WriteHeader(http.StatusOK)
			},
		),
	)
	defer server.Close()
	b := NewBaseClient(server.URL+"/api", &fakeTokenSource{}, nil, nil)
	err := b.ExecuteRequest(
		context.Background(),
		OutboundRequest{
			Method: http.MethodGet,
			Path:   "/sweets/search",
			QueryParams: map[string]string{
				"name":     "choc",
				"minPrice": "1.5",
				"maxPrice": "",
			},
		},
	)
	require.NoError(t, err)
}

func TestSubmitRequestInbound(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
		assertions func(
			t *testing.T,
			err error,
			tokens *fakeTokenSource,
			rejections []CredentialRejection,
		)
	}{
		{
			name:       "success passes through",
			statusCode: http.StatusOK,
			body:       `{"message":"Success"}`,
			assertions: func(
				t *testing.T,
				err error,
				tokens *fakeTokenSource,
				rejections []CredentialRejection,
			) {
				require.NoError(t, err)
				token, ok := tokens.Read()
				require.True(t, ok)
				require.Equal(t, "test-token", token)
				require.Empty(t, rejections)
			},
		},
		{
			name:       "401 tears down credential",
			statusCode: http.StatusUnauthorized,
			body:       `{"message":"Unauthorized"}`,
			assertions: func(
				t *testing.T,
				err error,
				tokens *fakeTokenSource,
				rejections []CredentialRejection,
			) {
				require.Error(t, err)
				require.IsType(t, &meta.ErrAuthentication{}, err)
				require.Equal(t, "Unauthorized", meta.Message(err))
				_, ok := tokens.Read()
				require.False(t, ok)
				require.Len(t, rejections, 1)
				require.Equal(t, "test-token", rejections[0].Token)
				require.Equal(t, http.MethodGet, rejections[0].Method)
				require.Equal(t, "sweets/search", rejections[0].Path)
				require.NotEmpty(t, rejections[0].RequestID)
			},
		},
		{
			name:       "401 with non-JSON body still tears down credential",
			statusCode: http.StatusUnauthorized,
			body:       "nope",
			assertions: func(
				t *testing.T,
				err error,
				tokens *fakeTokenSource,
				rejections []CredentialRejection,
			) {
				require.IsType(t, &meta.ErrAuthentication{}, err)
				_, ok := tokens.Read()
				require.False(t, ok)
				require.Len(t, rejections, 1)
			},
		},
		{
			name:       "404 leaves credential untouched",
			statusCode: http.StatusNotFound,
			body:       `{"message":"Not Found"}`,
			assertions: func(
				t *testing.T,
				err error,
				tokens *fakeTokenSource,
				rejections []CredentialRejection,
			) {
				require.IsType(t, &meta.ErrNotFound{}, err)
				require.Equal(t, "Not Found", meta.Message(err))
				token, ok := tokens.Read()
				require.True(t, ok)
				require.Equal(t, "test-token", token)
				require.Empty(t, rejections)
			},
		},
		{
			name:       "400 surfaces reason",
			statusCode: http.StatusBadRequest,
			body:       `{"error":"Invalid credentials"}`,
			assertions: func(
				t *testing.T,
				err error,
				tokens *fakeTokenSource,
				rejections []CredentialRejection,
			) {
				require.IsType(t, &meta.ErrBadRequest{}, err)
				require.Equal(t, "Invalid credentials", meta.Message(err))
				_, ok := tokens.Read()
				require.True(t, ok)
				require.Empty(t, rejections)
			},
		},
		{
			name:       "403 is not a rejection",
			statusCode: http.StatusForbidden,
			body:       `{"error":"Admins only"}`,
			assertions: func(
				t *testing.T,
				err error,
				tokens *fakeTokenSource,
				rejections []CredentialRejection,
			) {
				require.IsType(t, &meta.ErrAuthorization{}, err)
				_, ok := tokens.Read()
				require.True(t, ok)
				require.Empty(t, rejections)
			},
		},
		{
			name:       "409 conflict",
			statusCode: http.StatusConflict,
			body:       `{"error":"Email already registered"}`,
			assertions: func(
				t *testing.T,
				err error,
				_ *fakeTokenSource,
				rejections []CredentialRejection,
			) {
				require.IsType(t, &meta.ErrConflict{}, err)
				require.Empty(t, rejections)
			},
		},
		{
			name:       "500 internal server error",
			statusCode: http.StatusInternalServerError,
			assertions: func(
				t *testing.T,
				err error,
				_ *fakeTokenSource,
				rejections []CredentialRejection,
			) {
				require.IsType(t, &meta.ErrInternalServer{}, err)
				require.Empty(t, rejections)
			},
		},
		{
			name:       "other status",
			statusCode: http.StatusTeapot,
			assertions: func(
				t *testing.T,
				err error,
				_ *fakeTokenSource,
				rejections []CredentialRejection,
			) {
				require.IsType(t, &meta.ErrUnexpectedStatus{}, err)
				require.Equal(
					t,
					http.StatusTeapot,
					err.(*meta.ErrUnexpectedStatus).StatusCode,
				)
				require.Empty(t, rejections)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server := httptest.NewServer(
				http.HandlerFunc(
					func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(testCase.statusCode)
						fmt.Fprint(w, testCase.body)
					},
				),
			)
			defer server.Close()
			tokens := &fakeTokenSource{token: "test-token"}
			b := NewBaseClient(server.URL, tokens, nil, nil)
			var rejections []CredentialRejection
			b.Rejections.Subscribe(func(rejection CredentialRejection) {
				rejections = append(rejections, rejection)
			})
			err := b.ExecuteRequest(
				context.Background(),
				OutboundRequest{
					Method: http.MethodGet,
					Path:   "sweets/search",
				},
			)
			testCase.assertions(t, err, tokens, rejections)
		})
	}
}

func TestSubmitRequestStaleRejection(t *testing.T) {
	tokens := &fakeTokenSource{token: "t-old"}
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				// A new session is adopted while this request is in flight.
				tokens.set("t-new")
				w.WriteHeader(http.StatusUnauthorized)
			},
		),
	)
	defer server.Close()
	b := NewBaseClient(server.URL, tokens, nil, nil)
	var notified bool
	b.Rejections.Subscribe(func(CredentialRejection) {
		notified = true
	})
	err := b.ExecuteRequest(
		context.Background(),
		OutboundRequest{
			Method: http.MethodGet,
			Path:   "sweets",
		},
	)
	require.IsType(t, &meta.ErrAuthentication{}, err)
	require.False(t, notified)
	token, ok := tokens.Read()
	require.True(t, ok)
	require.Equal(t, "t-new", token)
}

func TestExecuteRequestResponseHandling(t *testing.T) {
	schema := gojsonschema.NewStringLoader(
		`{"type":"object","required":["token"],` +
			`"properties":{"token":{"type":"string","minLength":1}}}`,
	)
	testCases := []struct {
		name       string
		body       string
		assertions func(t *testing.T, respObj map[string]interface{}, err error)
	}{
		{
			name: "valid body",
			body: `{"token":"t1"}`,
			assertions: func(
				t *testing.T,
				respObj map[string]interface{},
				err error,
			) {
				require.NoError(t, err)
				require.Equal(t, "t1", respObj["token"])
			},
		},
		{
			name: "body fails schema",
			body: `{"token":""}`,
			assertions: func(
				t *testing.T,
				respObj map[string]interface{},
				err error,
			) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "failed JSON validation")
				require.Empty(t, respObj)
			},
		},
		{
			name: "body is not JSON",
			body: `<html>`,
			assertions: func(
				t *testing.T,
				_ map[string]interface{},
				err error,
			) {
				require.Error(t, err)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server := httptest.NewServer(
				http.HandlerFunc(
					func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(http.StatusCreated)
						fmt.Fprint(w, testCase.body)
					},
				),
			)
			defer server.Close()
			b := NewBaseClient(server.URL, &fakeTokenSource{}, nil, nil)
			respObj := map[string]interface{}{}
			err := b.ExecuteRequest(
				context.Background(),
				OutboundRequest{
					Method:           http.MethodPost,
					Path:             "auth/register",
					ReqBodyObj:       map[string]string{"email": "a@x.com"},
					RespObj:          &respObj,
					RespSchemaLoader: schema,
				},
			)
			testCase.assertions(t, respObj, err)
		})
	}
}

func TestExecuteRequestExplicitSuccessCode(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		),
	)
	defer server.Close()
	b := NewBaseClient(server.URL, &fakeTokenSource{}, nil, nil)
	err := b.ExecuteRequest(
		context.Background(),
		OutboundRequest{
			Method:      http.MethodPost,
			Path:        "auth/register",
			SuccessCode: http.StatusCreated,
		},
	)
	require.IsType(t, &meta.ErrUnexpectedStatus{}, err)
}

func TestRejectionNotifier(t *testing.T) {
	n := NewRejectionNotifier()
	var calls []string
	unsubscribeA := n.Subscribe(func(CredentialRejection) {
		calls = append(calls, "a")
	})
	n.Subscribe(func(CredentialRejection) {
		calls = append(calls, "b")
	})
	n.Notify(CredentialRejection{})
	require.Equal(t, []string{"a", "b"}, calls)
	unsubscribeA()
	n.Notify(CredentialRejection{})
	require.Equal(t, []string{"a", "b", "b"}, calls)
}
