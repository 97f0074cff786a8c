package users

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/syncdraft/internal/auth"
	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/testutil"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type env struct {
	store  *testutil.MemStore
	files  *testutil.MemObjects
	audit  *testutil.MemAudit
	router http.Handler
	user   models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store: testutil.NewMemStore(),
		files: testutil.NewMemObjects(),
		audit: &testutil.MemAudit{},
		user: models.User{
			ID:    gofakeit.UUID(),
			Name:  gofakeit.Name(),
			Email: gofakeit.Email(),
			Bio:   "writes things",
		},
	}
	u := e.user
	require.NoError(t, e.store.CreateUser(context.Background(), &u))

	h := NewHandler(e.store, e.files, e.audit)
	caller := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get("X-User"); id != "" {
				r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{ID: id}))
			}
			next.ServeHTTP(w, r)
		})
	}
	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		r.Get("/{id}/avatar", h.GetAvatar)
		r.Group(func(r chi.Router) {
			r.Use(caller)
			r.Get("/profile", h.GetProfile)
			r.Patch("/profile", h.PatchProfile)
			r.Put("/profile/avatar", h.UploadAvatar)
			r.Get("/profile/activity", h.Activity)
		})
	})
	e.router = r
	return e
}

func (e *env) serve(req *http.Request, user string) *httptest.ResponseRecorder {
	if user != "" {
		req.Header.Set("X-User", user)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func avatarRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "me.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/users/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestGetProfile(t *testing.T) {
	e := newEnv(t)

	rec := e.serve(httptest.NewRequest(http.MethodGet, "/users/profile", nil), e.user.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"`+e.user.ID+`","full_name":"`+e.user.Name+`","email":"`+e.user.Email+`","bio":"writes things","avatar":""}`, rec.Body.String())

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/users/profile", nil), "ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/users/profile", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPatchProfile(t *testing.T) {
	e := newEnv(t)
	patch := func(body string) *httptest.ResponseRecorder {
		return e.serve(httptest.NewRequest(http.MethodPatch, "/users/profile", strings.NewReader(body)), e.user.ID)
	}

	rec := patch(`{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errBody models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "No fields to update", errBody.Detail)

	assert.Equal(t, http.StatusBadRequest, patch(`{"full_name":"  "}`).Code)

	rec = patch(`{"bio":"new bio"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got profileUpdated
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "new bio", got.Bio)
	assert.Equal(t, e.user.Name, got.Name)
	assert.Equal(t, "Profile updated successfully", got.Message)

	rec = patch(`{"full_name":"Renamed","bio":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Renamed", got.Name)
	assert.Empty(t, got.Bio)
}

func TestAvatarUploadAndDownload(t *testing.T) {
	e := newEnv(t)

	rec := e.serve(avatarRequest(t, "avatar", pngBytes), e.user.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var profile models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.True(t, strings.HasPrefix(profile.Avatar, "avatars/"+e.user.ID+"/"))

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/users/"+e.user.ID+"/avatar", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	rec = e.serve(avatarRequest(t, "avatar", pngBytes), e.user.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.files.Len())
}

func TestAvatarUpload_Rejects(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name  string
		field string
		data  []byte
	}{
		{"wrong field", "picture", pngBytes},
		{"not an image", "avatar", []byte("just some text, definitely not a picture")},
		{"empty", "avatar", nil},
		{"too large", "avatar", append(append([]byte{}, pngBytes...), make([]byte, maxAvatarBytes)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.serve(avatarRequest(t, tt.field, tt.data), e.user.ID)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Zero(t, e.files.Len())
}

func TestGetAvatar_Missing(t *testing.T) {
	e := newEnv(t)

	rec := e.serve(httptest.NewRequest(http.MethodGet, "/users/"+e.user.ID+"/avatar", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/users/nobody/avatar", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActivity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.audit.Record(ctx, models.AuthEvent{Kind: models.EventSignup, UserID: e.user.ID, Succeeded: true}))
	require.NoError(t, e.audit.Record(ctx, models.AuthEvent{Kind: models.EventLogin, UserID: "someone-else", Succeeded: true}))
	require.NoError(t, e.audit.Record(ctx, models.AuthEvent{Kind: models.EventLogin, UserID: e.user.ID}))

	rec := e.serve(httptest.NewRequest(http.MethodGet, "/users/profile/activity", nil), e.user.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []models.AuthEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, models.EventLogin, events[0].Kind)
	assert.False(t, events[0].Succeeded)
	assert.Equal(t, models.EventSignup, events[1].Kind)

	rec = e.serve(httptest.NewRequest(http.MethodGet, "/users/profile/activity", nil), "fresh-user")
	assert.JSONEq(t, `[]`, rec.Body.String())
}
