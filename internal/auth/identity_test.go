package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/store"
)

type lookupFunc func(ctx context.Context, id string) (*models.User, error)

func (f lookupFunc) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return f(ctx, id)
}

func knownUser(ctx context.Context, id string) (*models.User, error) {
	if id == "user-1" {
		return &models.User{ID: "user-1", Name: "Ada", Email: "ada@example.com", Password: "$2a$hash"}, nil
	}
	return nil, store.ErrNotFound
}

func TestResolver_Resolve(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := newCodec(t).WithClock(fixedClock(now))
	r := NewResolver(codec, lookupFunc(knownUser))

	access, err := codec.Issue("user-1", KindAccess, time.Hour)
	require.NoError(t, err)

	id, err := r.Resolve(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "user-1", Name: "Ada", Email: "ada@example.com"}, id)
}

func TestResolver_ResolveFailures(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := newCodec(t).WithClock(fixedClock(now))
	r := NewResolver(codec, lookupFunc(knownUser))

	refresh, err := codec.Issue("user-1", KindRefresh, time.Hour)
	require.NoError(t, err)
	noUser, err := codec.Issue("", KindAccess, time.Hour)
	require.NoError(t, err)
	ghost, err := codec.Issue("user-gone", KindAccess, time.Hour)
	require.NoError(t, err)
	stale, err := codec.Issue("user-1", KindAccess, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		r     *Resolver
		token string
	}{
		{"garbage", r, "garbage"},
		{"refresh used as access", r, refresh},
		{"no user id", r, noUser},
		{"deleted user", r, ghost},
		{"expired", NewResolver(codec.WithClock(fixedClock(now.Add(2*time.Hour))), lookupFunc(knownUser)), stale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.r.Resolve(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestResolver_StoreFailureIsNotUnauthenticated(t *testing.T) {
	codec := newCodec(t)
	boom := errors.New("mongo down")
	r := NewResolver(codec, lookupFunc(func(context.Context, string) (*models.User, error) {
		return nil, boom
	}))

	tok, err := codec.Issue("user-1", KindAccess, time.Hour)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), tok)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestResolver_ResolveRefresh(t *testing.T) {
	codec := newCodec(t)
	r := NewResolver(codec, lookupFunc(knownUser))

	pair, err := codec.IssuePair("user-1")
	require.NoError(t, err)

	id, err := r.ResolveRefresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.ID)

	_, err = r.ResolveRefresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{ID: "user-1"})
	id, ok := IdentityFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-1", id.ID)
}
