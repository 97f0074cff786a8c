package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/store"
)

// ErrUnauthenticated is returned when a bearer token does not resolve to a user.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the caller as seen by handlers. It never carries the password hash.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserLookup finds a user by id; a missing user is store.ErrNotFound.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Resolver turns bearer tokens into identities.
type Resolver struct {
	codec *TokenCodec
	users UserLookup
}

func NewResolver(codec *TokenCodec, users UserLookup) *Resolver {
	return &Resolver{codec: codec, users: users}
}

// Resolve accepts only access tokens.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	return r.resolve(ctx, token, KindAccess)
}

// ResolveRefresh accepts only refresh tokens.
func (r *Resolver) ResolveRefresh(ctx context.Context, token string) (Identity, error) {
	return r.resolve(ctx, token, KindRefresh)
}

func (r *Resolver) resolve(ctx context.Context, token, kind string) (Identity, error) {
	claims, err := r.codec.Verify(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Type != kind {
		return Identity{}, fmt.Errorf("%w: expected %s token, got %q", ErrUnauthenticated, kind, claims.Type)
	}
	if claims.UserID == "" {
		return Identity{}, fmt.Errorf("%w: token has no user", ErrUnauthenticated)
	}

	user, err := r.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, fmt.Errorf("%w: user %s not found", ErrUnauthenticated, claims.UserID)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	return Identity{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

type ctxKeyIdentity struct{}

// WithIdentity stores the resolved caller in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity{}, id)
}

// IdentityFrom returns the caller stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity{}).(Identity)
	return id, ok && id.ID != ""
}

// Caller returns the identity stored by the auth middleware, or an
// Unauthenticated error when the route was reached without one.
func Caller(ctx context.Context) (Identity, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return Identity{}, models.NewUnauthenticatedError("Not authenticated")
	}
	return id, nil
}
