package apitest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/krancour/sweetshop/sdk/authn"
	"github.com/krancour/sweetshop/sdk/catalog"
	"github.com/krancour/sweetshop/sdk/meta"
)

func (s *Server) findUser(token string) (authn.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.tokens[token]
	if !ok {
		return authn.User{}, false
	}
	acct, ok := s.accounts[email]
	return acct.user, ok
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	creds := authn.Credentials{}
	serveRequest(
		inboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: credentialsSchemaLoader,
			ReqBodyObj:          &creds,
			EndpointLogic: func() (interface{}, error) {
				s.waitForAuthHold()
				s.mu.Lock()
				defer s.mu.Unlock()
				acct, ok := s.accounts[strings.ToLower(creds.Email)]
				if !ok || acct.password != creds.Password {
					return nil, meta.NewErrBadRequest("Invalid credentials")
				}
				return authn.AuthResult{
					Token: s.issueTokenLocked(creds.Email),
					User:  acct.user,
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	creds := authn.Credentials{}
	serveRequest(
		inboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: credentialsSchemaLoader,
			ReqBodyObj:          &creds,
			EndpointLogic: func() (interface{}, error) {
				s.waitForAuthHold()
				s.mu.Lock()
				defer s.mu.Unlock()
				if _, ok := s.accounts[strings.ToLower(creds.Email)]; ok {
					return nil, meta.NewErrConflict("Email already registered")
				}
				user := s.addUserLocked(creds.Email, creds.Password, authn.RoleUser)
				return authn.AuthResult{
					Token: s.issueTokenLocked(creds.Email),
					User:  user,
				}, nil
			},
			SuccessCode: http.StatusCreated,
		},
	)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	serveRequest(
		inboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return userFromContext(r.Context()), nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (s *Server) listSweets(w http.ResponseWriter, r *http.Request) {
	serveRequest(
		inboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				sweets := make([]catalog.Sweet, len(s.sweets))
				copy(sweets, s.sweets)
				return sweets, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (s *Server) searchSweets(w http.ResponseWriter, r *http.Request) {
	serveRequest(
		inboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				q := r.URL.Query()
				name := strings.ToLower(q.Get("name"))
				minPrice, err := parsePrice(q.Get("minPrice"), 0)
				if err != nil {
					return nil, meta.NewErrBadRequest("Invalid minPrice")
				}
				maxPrice, err := parsePrice(q.Get("maxPrice"), -1)
				if err != nil {
					return nil, meta.NewErrBadRequest("Invalid maxPrice")
				}
				s.mu.Lock()
				defer s.mu.Unlock()
				sweets := []catalog.Sweet{}
				for _, sweet := range s.sweets {
					if name != "" &&
						!strings.Contains(strings.ToLower(sweet.Name), name) {
						continue
					}
					if sweet.Price < minPrice {
						continue
					}
					if maxPrice >= 0 && sweet.Price > maxPrice {
						continue
					}
					sweets = append(sweets, sweet)
				}
				return sweets, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func parsePrice(value string, defaultValue float64) (float64, error) {
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseFloat(value, 64)
}
