package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKeyUser string

const UserContextKey ctxKeyUser = "user"

const bearerPrefix = "Bearer "

// JwtValidator middleware validates the bearer token of the Authorization
// header and associates the authenticated user with the request's context
// under UserContextKey.
//
// Requests without a valid bearer token are aborted with a 401 status.
func JwtValidator(service Authorizer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			authHeader := request.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				writer.WriteHeader(http.StatusUnauthorized)
				return
			}
			user, err := service.ValidateToken(ctx, strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				writer.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx = context.WithValue(ctx, UserContextKey, *user)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// AllowedRole middleware checks that the authenticated user has the given
// role. Requests without an authenticated user are aborted with a 401 status,
// requests with a different role with a 403.
func AllowedRole(service Authorizer, role Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			user, err := service.GetAuthenticatedUser(ctx)
			if err != nil {
				writer.WriteHeader(http.StatusUnauthorized)
				return
			}
			if user.Role != role {
				writer.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
