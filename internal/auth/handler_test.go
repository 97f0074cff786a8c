package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/store"
	"github.com/ayush/syncdraft/internal/testutil"
)

type authEnv struct {
	users   *testutil.MemStore
	audit   *testutil.MemAudit
	codec   *TokenCodec
	handler *Handler
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	users := testutil.NewMemStore()
	audit := &testutil.MemAudit{}
	codec := newCodec(t)
	return &authEnv{
		users:   users,
		audit:   audit,
		codec:   codec,
		handler: NewHandler(users, codec, NewResolver(codec, users), audit),
	}
}

func call(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func decodeAuth(t *testing.T, rec *httptest.ResponseRecorder) models.AuthResponse {
	t.Helper()
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestSignupThenLogin(t *testing.T) {
	e := newAuthEnv(t)

	rec := call(e.handler.Signup, `{"email":"a@x.com","password":"secret1","full_name":"Ada"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	signup := decodeAuth(t, rec)
	assert.NotEmpty(t, signup.AccessToken)
	assert.NotEmpty(t, signup.RefreshToken)
	assert.Equal(t, "bearer", signup.TokenType)
	assert.Equal(t, "a@x.com", signup.User.Email)
	assert.Equal(t, "Ada", signup.User.Name)
	assert.NotContains(t, rec.Body.String(), "password")

	claims, err := e.codec.Verify(signup.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, claims.UserID)
	assert.Equal(t, KindAccess, claims.Type)

	stored, err := e.users.GetUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.True(t, strings.HasPrefix(stored.Password, "$2"))

	rec = call(e.handler.Login, `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeAuth(t, rec)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, signup.User.ID, login.User.ID)

	rec = call(e.handler.Login, `{"email":"a@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeError(t, rec).Detail)
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	e := newAuthEnv(t)
	email, password := gofakeit.Email(), gofakeit.Password(true, true, true, false, false, 12)
	require.Equal(t, http.StatusCreated, call(e.handler.Signup, jsonBody(t, models.SignupRequest{
		Email: email, Password: password, FullName: gofakeit.Name(),
	})).Code)

	wrong := call(e.handler.Login, jsonBody(t, models.LoginRequest{Email: email, Password: password + "x"}))
	unknown := call(e.handler.Login, jsonBody(t, models.LoginRequest{Email: "nobody-" + email, Password: password}))

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
}

func TestLogin_NormalizesEmail(t *testing.T) {
	e := newAuthEnv(t)
	require.Equal(t, http.StatusCreated, call(e.handler.Signup, `{"email":" Ada@Example.com ","password":"secret1","full_name":"Ada"}`).Code)

	rec := call(e.handler.Login, `{"email":"ADA@example.COM","password":"secret1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada@example.com", decodeAuth(t, rec).User.Email)
}

func TestSignup_DuplicateEmailIsConflict(t *testing.T) {
	e := newAuthEnv(t)
	body := `{"email":"dup@x.com","password":"secret1","full_name":"First"}`
	require.Equal(t, http.StatusCreated, call(e.handler.Signup, body).Code)

	rec := call(e.handler.Signup, `{"email":"DUP@x.com","password":"another1","full_name":"Second"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Email already registered", resp.Detail)
	assert.Equal(t, models.CodeConflict, resp.Code)
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"secret1","full_name":"A"}`},
		{"missing password", `{"email":"a@x.com","full_name":"A"}`},
		{"missing name", `{"email":"a@x.com","password":"secret1"}`},
		{"blank name", `{"email":"a@x.com","password":"secret1","full_name":"   "}`},
		{"email without at", `{"email":"ax.com","password":"secret1","full_name":"A"}`},
		{"short password", `{"email":"a@x.com","password":"12345","full_name":"A"}`},
		{"not json", `email=a@x.com`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newAuthEnv(t)
			rec := call(e.handler.Signup, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, models.CodeValidation, decodeError(t, rec).Code)
			_, err := e.users.GetUserByEmail(context.Background(), "a@x.com")
			assert.Error(t, err)
		})
	}
}

func TestRefresh(t *testing.T) {
	e := newAuthEnv(t)
	signup := decodeAuth(t, call(e.handler.Signup, `{"email":"r@x.com","password":"secret1","full_name":"R"}`))

	rec := call(e.handler.Refresh, `{"refresh_token":"`+signup.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decodeAuth(t, rec)
	assert.Equal(t, signup.User.ID, refreshed.User.ID)
	claims, err := e.codec.Verify(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, KindAccess, claims.Type)

	rec = call(e.handler.Refresh, `{"refresh_token":"`+signup.AccessToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid refresh token", decodeError(t, rec).Detail)

	rec = call(e.handler.Refresh, `{"refresh_token":"garbage"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(e.handler.Refresh, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// vanishingUsers forgets every user on ID lookup, as if the account was
// deleted after the token was resolved.
type vanishingUsers struct {
	*testutil.MemStore
}

func (vanishingUsers) GetUserByID(context.Context, string) (*models.User, error) {
	return nil, store.ErrNotFound
}

func TestRefresh_UserDeletedAfterResolve(t *testing.T) {
	users := testutil.NewMemStore()
	audit := &testutil.MemAudit{}
	codec := newCodec(t)
	h := NewHandler(vanishingUsers{users}, codec, NewResolver(codec, users), audit)

	signup := decodeAuth(t, call(h.Signup, `{"email":"gone@x.com","password":"secret1","full_name":"Gone"}`))

	rec := call(h.Refresh, `{"refresh_token":"`+signup.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid refresh token", decodeError(t, rec).Detail)

	events := audit.Events()
	require.Len(t, events, 2)
	assert.Equal(t, models.EventRefresh, events[1].Kind)
	assert.False(t, events[1].Succeeded)
}

func TestAuditTrail(t *testing.T) {
	e := newAuthEnv(t)
	call(e.handler.Signup, `{"email":"t@x.com","password":"secret1","full_name":"T"}`)
	call(e.handler.Login, `{"email":"t@x.com","password":"nope-nope"}`)
	call(e.handler.Login, `{"email":"t@x.com","password":"secret1"}`)

	events := e.audit.Events()
	require.Len(t, events, 3)
	assert.Equal(t, models.EventSignup, events[0].Kind)
	assert.True(t, events[0].Succeeded)
	assert.NotEmpty(t, events[0].UserID)
	assert.Equal(t, models.EventLogin, events[1].Kind)
	assert.False(t, events[1].Succeeded)
	assert.Equal(t, "t@x.com", events[1].Email)
	assert.True(t, events[2].Succeeded)
}

func TestAuditFailureDoesNotFailRequest(t *testing.T) {
	e := newAuthEnv(t)
	e.audit.Err = errors.New("postgres unavailable")

	rec := call(e.handler.Signup, `{"email":"q@x.com","password":"secret1","full_name":"Q"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestStoreFailureIsInternal(t *testing.T) {
	e := newAuthEnv(t)
	e.users.Err = errors.New("mongo timeout")

	rec := call(e.handler.Login, `{"email":"a@x.com","password":"secret1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo timeout")
}
