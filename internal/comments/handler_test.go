package comments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/syncdraft/internal/auth"
	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/testutil"
)

var people = map[string]string{"u1": "Ada Lovelace", "u2": "Grace Hopper"}

func withCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-User"); id != "" {
			r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{ID: id, Name: people[id]}))
		}
		next.ServeHTTP(w, r)
	})
}

func setup(t *testing.T) (*testutil.MemStore, http.Handler) {
	t.Helper()
	ctx := context.Background()
	st := testutil.NewMemStore()
	for id, name := range people {
		require.NoError(t, st.CreateUser(ctx, &models.User{ID: id, Name: name, Email: id + "@example.com"}))
	}
	require.NoError(t, st.CreatePost(ctx, &models.Post{ID: "live", Title: "Live", AuthorID: "u1"}))
	_, err := st.PublishPostForAuthor(ctx, "live", "u1")
	require.NoError(t, err)
	require.NoError(t, st.CreatePost(ctx, &models.Post{ID: "draft", Title: "Draft", AuthorID: "u1"}))

	h := NewHandler(st, st, st)
	r := chi.NewRouter()
	r.With(withCaller).Post("/api/posts/{id}/comments", h.Create)
	r.With(withCaller).Delete("/api/posts/{id}/comments/{commentId}", h.Delete)
	r.Get("/api/public/posts/{id}/comments", h.List)
	return st, r
}

func send(router http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-User", user)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreate(t *testing.T) {
	_, router := setup(t)

	rec := send(router, http.MethodPost, "/api/posts/live/comments", "u2", `{"body":"  Nice post  "}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.CommentView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "live", got.PostID)
	assert.Equal(t, "u2", got.AuthorID)
	assert.Equal(t, "Grace Hopper", got.AuthorName)
	assert.Equal(t, "Nice post", got.Body)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreate_SoftNotFoundUnlessPublished(t *testing.T) {
	st, router := setup(t)

	for _, postID := range []string{"draft", "nope"} {
		t.Run(postID, func(t *testing.T) {
			rec := send(router, http.MethodPost, "/api/posts/"+postID+"/comments", "u2", `{"body":"hi"}`)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"error":"Post not found"}`, rec.Body.String())
			assert.Zero(t, st.CommentCount(postID))
		})
	}
}

func TestCreate_Rejects(t *testing.T) {
	_, router := setup(t)

	rec := send(router, http.MethodPost, "/api/posts/live/comments", "", `{"body":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(router, http.MethodPost, "/api/posts/live/comments", "u2", `{"body":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestList_NewestFirstWithAuthorNames(t *testing.T) {
	_, router := setup(t)
	send(router, http.MethodPost, "/api/posts/live/comments", "u2", `{"body":"first"}`)
	send(router, http.MethodPost, "/api/posts/live/comments", "u1", `{"body":"second"}`)

	rec := send(router, http.MethodGet, "/api/public/posts/live/comments", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.CommentView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Body)
	assert.Equal(t, "Ada Lovelace", list[0].AuthorName)
	assert.Equal(t, "first", list[1].Body)
	assert.Equal(t, "Grace Hopper", list[1].AuthorName)
}

func TestList_OnlyForPublishedPosts(t *testing.T) {
	st, router := setup(t)
	rec := send(router, http.MethodPost, "/api/posts/live/comments", "u2", `{"body":"before unpublish"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	_, err := st.UnpublishPostForAuthor(context.Background(), "live", "u1")
	require.NoError(t, err)

	for _, postID := range []string{"live", "draft", "nope"} {
		t.Run(postID, func(t *testing.T) {
			rec := send(router, http.MethodGet, "/api/public/posts/"+postID+"/comments", "", "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.NotContains(t, rec.Body.String(), "before unpublish")
		})
	}
	assert.Equal(t, 1, st.CommentCount("live"))
}

func TestDelete(t *testing.T) {
	st, router := setup(t)
	rec := send(router, http.MethodPost, "/api/posts/live/comments", "u2", `{"body":"mine"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var c models.CommentView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	path := "/api/posts/live/comments/" + c.ID

	tests := []struct {
		name   string
		path   string
		user   string
		status int
		code   string
	}{
		{name: "not the author", path: path, user: "u1", status: http.StatusForbidden, code: models.CodeForbidden},
		{name: "wrong post", path: "/api/posts/draft/comments/" + c.ID, user: "u2", status: http.StatusNotFound, code: models.CodeNotFound},
		{name: "missing comment", path: "/api/posts/live/comments/nope", user: "u2", status: http.StatusNotFound, code: models.CodeNotFound},
		{name: "anonymous", path: path, status: http.StatusUnauthorized, code: models.CodeUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(router, http.MethodDelete, tt.path, tt.user, "")
			assert.Equal(t, tt.status, rec.Code)
			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
	assert.Equal(t, 1, st.CommentCount("live"))

	rec = send(router, http.MethodDelete, path, "u2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, st.CommentCount("live"))

	rec = send(router, http.MethodDelete, path, "u2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
