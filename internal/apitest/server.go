// Package apitest provides an in-process fake of the storefront API for use
// in tests. It implements just enough of the API (login, registration,
// profile, and the catalog) to exercise clients and session handling end to
// end.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/krancour/sweetshop/sdk/authn"
	"github.com/krancour/sweetshop/sdk/catalog"
	"github.com/xeipuuv/gojsonschema"
)

var credentialsSchemaLoader = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["email", "password"],
	"properties": {
		"email": {"type": "string", "minLength": 1},
		"password": {"type": "string", "minLength": 1}
	}
}`)

// RecordedRequest is what the Server remembers about each request it served.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
}

type account struct {
	user     authn.User
	password string
}

// Server is a fake storefront API. The zero value is not usable; use
// NewServer.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  map[string]account
	tokens    map[string]string // token -> email
	sweets    []catalog.Sweet
	requests  []RecordedRequest
	nextUser  int64
	nextToken int

	authHold    chan struct{}
	authArrived chan struct{}
}

// NewServer starts a fake storefront API. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		accounts: map[string]account{},
		tokens:   map[string]string{},
	}
	filter := &tokenAuthFilter{findUser: s.findUser}
	router := mux.NewRouter()
	router.StrictSlash(true)
	router.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	router.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	router.HandleFunc("/auth/me", filter.Decorate(s.me)).Methods(http.MethodGet)
	router.HandleFunc(
		"/sweets",
		filter.Decorate(s.listSweets),
	).Methods(http.MethodGet)
	router.HandleFunc(
		"/sweets/search",
		filter.Decorate(s.searchSweets),
	).Methods(http.MethodGet)
	s.Server = httptest.NewServer(s.record(router))
	return s
}

// AddUser creates an account and returns its User.
func (s *Server) AddUser(email, password string, role authn.Role) authn.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password, role)
}

func (s *Server) addUserLocked(
	email string,
	password string,
	role authn.Role,
) authn.User {
	s.nextUser++
	user := authn.User{
		ID:    s.nextUser,
		Email: email,
		Role:  role,
	}
	s.accounts[strings.ToLower(email)] = account{
		user:     user,
		password: password,
	}
	return user
}

// IssueToken mints a token for an existing account as if it had logged in.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(email)
}

func (s *Server) issueTokenLocked(email string) string {
	s.nextToken++
	token := fmt.Sprintf("t%d", s.nextToken)
	s.tokens[token] = strings.ToLower(email)
	return token
}

// RevokeToken causes subsequent requests bearing the token to be rejected.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// AddSweet adds an item to the catalog and returns it with its ID assigned.
func (s *Server) AddSweet(sweet catalog.Sweet) catalog.Sweet {
	s.mu.Lock()
	defer s.mu.Unlock()
	sweet.ID = int64(len(s.sweets) + 1)
	if sweet.CreatedAt.IsZero() {
		sweet.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	s.sweets = append(s.sweets, sweet)
	return sweet
}

// HoldAuth makes the next login or registration wait before responding
// until release is called. The arrived channel is closed once that request
// has been received.
func (s *Server) HoldAuth() (release func(), arrived <-chan struct{}) {
	hold := make(chan struct{})
	arr := make(chan struct{})
	s.mu.Lock()
	s.authHold = hold
	s.authArrived = arr
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() { close(hold) })
	}, arr
}

func (s *Server) waitForAuthHold() {
	s.mu.Lock()
	hold, arrived := s.authHold, s.authArrived
	s.authHold, s.authArrived = nil, nil
	s.mu.Unlock()
	if hold == nil {
		return
	}
	close(arrived)
	<-hold
}

// Requests returns every request served so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	requests := make([]RecordedRequest, len(s.requests))
	copy(requests, s.requests)
	return requests
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(
			s.requests,
			RecordedRequest{
				Method:        r.Method,
				Path:          r.URL.Path,
				Authorization: r.Header.Get("Authorization"),
			},
		)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}
