package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/auth"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/domain"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/storage"
)

type contextKey string

const UserContextKey contextKey = "user"

// Auth creates the identity-resolving middleware. It extracts the bearer
// token, verifies it, resolves the subject to a stored user, and attaches
// that user to the request context. Handlers behind this middleware can
// rely on UserFromContext returning a fully resolved identity; no
// authorization check ever sees a partially resolved one.
//
// Token problems get distinct messages (expired vs malformed reveals
// nothing about accounts), but an unresolvable subject is reported the
// same as any other authentication failure so deleted accounts cannot be
// probed.
func Auth(store storage.Storage, tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, domain.ErrMissingToken)
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, domain.ErrMissingToken)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				unauthorized(w, err)
				return
			}

			user, err := store.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Subject deleted after issuance; indistinguishable
					// from any other unauthenticated request.
					unauthorized(w, domain.ErrUnauthenticated)
					return
				}
				http.Error(w, `{"code":500,"message":"internal server error"}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	http.Error(w, `{"code":401,"message":"`+err.Error()+`"}`, http.StatusUnauthorized)
}

// UserFromContext retrieves the resolved user from the request context.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(UserContextKey).(*domain.User)
	return user
}
