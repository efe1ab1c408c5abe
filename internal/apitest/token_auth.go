package apitest

import (
	"context"
	"net/http"
	"strings"

	"github.com/krancour/sweetshop/sdk/authn"
	"github.com/krancour/sweetshop/sdk/meta"
)

type userContextKey struct{}

func userFromContext(ctx context.Context) authn.User {
	user, _ := ctx.Value(userContextKey{}).(authn.User)
	return user
}

// tokenAuthFilter decorates handlers that require a bearer credential.
type tokenAuthFilter struct {
	findUser func(token string) (authn.User, bool)
}

func (t *tokenAuthFilter) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		headerValue := r.Header.Get("Authorization")
		if headerValue == "" {
			writeAPIResponse(
				w,
				http.StatusUnauthorized,
				meta.NewErrAuthentication(`"Authorization" header is missing.`),
			)
			return
		}
		headerValueParts := strings.SplitN(headerValue, " ", 2)
		if len(headerValueParts) != 2 || headerValueParts[0] != "Bearer" {
			writeAPIResponse(
				w,
				http.StatusUnauthorized,
				meta.NewErrAuthentication(`"Authorization" header is malformed.`),
			)
			return
		}
		user, ok := t.findUser(headerValueParts[1])
		if !ok {
			writeAPIResponse(
				w,
				http.StatusUnauthorized,
				meta.NewErrAuthentication("Invalid or expired token"),
			)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		handle(w, r.WithContext(ctx))
	}
}
