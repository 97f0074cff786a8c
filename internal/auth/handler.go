package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/syncdraft/internal/httpx"
	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/observability"
	"github.com/ayush/syncdraft/internal/store"
)

const minPasswordLen = 6

var (
	// ErrEmailTaken is wrapped by the conflict reply to a duplicate signup.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is wrapped by the 401 reply to a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// dummyHash is compared against when the email is unknown so that a missing
// account costs the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds signup, login and refresh handlers.
type Handler struct {
	users    UserStore
	codec    *TokenCodec
	resolver *Resolver
	audit    AuditLog
}

func NewHandler(users UserStore, codec *TokenCodec, resolver *Resolver, audit AuditLog) *Handler {
	if audit == nil {
		audit = NopAuditLog{}
	}
	return &Handler{users: users, codec: codec, resolver: resolver, audit: audit}
}

// Signup creates a user and returns a fresh token pair.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.FullName)
	if err := validateSignup(email, req.Password, name); err != nil {
		httpx.Error(w, r, err)
		return
	}

	_, err := h.users.GetUserByEmail(r.Context(), email)
	switch {
	case err == nil:
		h.record(r, models.AuthEvent{Kind: models.EventSignup, Email: email})
		httpx.Error(w, r, emailTaken())
		return
	case !errors.Is(err, store.ErrNotFound):
		httpx.Error(w, r, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.Error(w, r, models.NewInternalError(err))
		return
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.record(r, models.AuthEvent{Kind: models.EventSignup, Email: email})
			httpx.Error(w, r, emailTaken())
			return
		}
		httpx.Error(w, r, err)
		return
	}

	h.record(r, models.AuthEvent{Kind: models.EventSignup, UserID: user.ID, Email: email, Succeeded: true})
	h.respondWithTokens(w, r, http.StatusCreated, user)
}

// Login checks credentials. Unknown email and wrong password produce the same reply.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		httpx.Error(w, r, models.NewValidationError("email and password are required"))
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		httpx.Error(w, r, err)
		return
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		h.record(r, models.AuthEvent{Kind: models.EventLogin, Email: email})
		httpx.Error(w, r, invalidCredentials())
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.record(r, models.AuthEvent{Kind: models.EventLogin, UserID: user.ID, Email: email})
		httpx.Error(w, r, invalidCredentials())
		return
	}

	h.record(r, models.AuthEvent{Kind: models.EventLogin, UserID: user.ID, Email: email, Succeeded: true})
	h.respondWithTokens(w, r, http.StatusOK, user)
}

// Refresh trades a refresh token for a new token pair.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if req.RefreshToken == "" {
		httpx.Error(w, r, models.NewValidationError("refresh_token is required"))
		return
	}

	id, err := h.resolver.ResolveRefresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			h.record(r, models.AuthEvent{Kind: models.EventRefresh})
			httpx.Error(w, r, models.NewUnauthenticatedError("Invalid refresh token"))
			return
		}
		httpx.Error(w, r, err)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.record(r, models.AuthEvent{Kind: models.EventRefresh, UserID: id.ID})
			httpx.Error(w, r, models.NewUnauthenticatedError("Invalid refresh token"))
			return
		}
		httpx.Error(w, r, err)
		return
	}
	h.record(r, models.AuthEvent{Kind: models.EventRefresh, UserID: user.ID, Email: user.Email, Succeeded: true})
	h.respondWithTokens(w, r, http.StatusOK, user)
}

func (h *Handler) respondWithTokens(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	pair, err := h.codec.IssuePair(user.ID)
	if err != nil {
		httpx.Error(w, r, models.NewInternalError(err))
		return
	}
	httpx.WriteJSON(w, status, models.AuthResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
		User:         models.ProfileOf(user),
	})
}

// record writes an audit event. Audit failures never fail the request.
func (h *Handler) record(r *http.Request, ev models.AuthEvent) {
	ev.RemoteAddr = r.RemoteAddr
	observability.AuthEventsTotal.WithLabelValues(ev.Kind, observability.Outcome(ev.Succeeded)).Inc()
	if err := h.audit.Record(r.Context(), ev); err != nil {
		slog.WarnContext(r.Context(), "audit record failed", "kind", ev.Kind, "error", err)
	}
}

func emailTaken() error {
	return &models.AppError{Code: models.CodeConflict, Message: "Email already registered", Err: ErrEmailTaken}
}

func invalidCredentials() error {
	return &models.AppError{Code: models.CodeUnauthenticated, Message: "Invalid credentials", Err: ErrInvalidCredentials}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignup(email, password, name string) error {
	switch {
	case email == "" || password == "" || name == "":
		return models.NewValidationError("email, password and full_name are required")
	case !strings.Contains(email, "@"):
		return models.NewValidationError("email is not valid")
	case len(password) < minPasswordLen:
		return models.NewValidationError("password must be at least 6 characters")
	}
	return nil
}
