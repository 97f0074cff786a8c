package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ayush/syncdraft/internal/auth"
	"github.com/ayush/syncdraft/internal/httpx"
	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/observability"
)

// IdentityResolver turns an access token into the calling user.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (auth.Identity, error)
}

// RequireAuth validates the bearer token and injects the caller's identity
// into the request context.
func RequireAuth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				httpx.Error(w, r, models.NewUnauthenticatedError("Not authenticated"))
				return
			}

			id, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					httpx.Error(w, r, models.NewUnauthenticatedError("Invalid access token"))
					return
				}
				httpx.Error(w, r, err)
				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			ctx = observability.WithUserID(ctx, id.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
