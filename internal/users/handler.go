package users

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ayush/syncdraft/internal/auth"
	"github.com/ayush/syncdraft/internal/httpx"
	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/store"
)

const (
	maxAvatarBytes = 2 << 20
	activityLimit  = 20
)

// UserStore defines the interface for profile persistence.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
	SetAvatar(ctx context.Context, id, key string) (*models.User, error)
}

// FileStore defines the interface for avatar storage.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
}

// ActivityLog reads back the auth audit log.
type ActivityLog interface {
	RecentEvents(ctx context.Context, userID string, limit int) ([]models.AuthEvent, error)
}

// Handler holds profile HTTP handlers.
type Handler struct {
	users    UserStore
	files    FileStore
	activity ActivityLog
}

func NewHandler(users UserStore, files FileStore, activity ActivityLog) *Handler {
	return &Handler{users: users, files: files, activity: activity}
}

type profileUpdated struct {
	models.Profile
	Message string `json:"message"`
}

// GetProfile returns the caller's profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), caller.ID)
	if err != nil {
		httpx.Error(w, r, userError(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.ProfileOf(user))
}

// PatchProfile sets full_name and/or bio. A body with neither is rejected.
func (h *Handler) PatchProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req models.ProfileUpdate
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if req.FullName == nil && req.Bio == nil {
		httpx.Error(w, r, models.NewValidationError("No fields to update"))
		return
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		httpx.Error(w, r, models.NewValidationError("full_name cannot be empty"))
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), caller.ID, req)
	if err != nil {
		httpx.Error(w, r, userError(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profileUpdated{
		Profile: models.ProfileOf(user),
		Message: "Profile updated successfully",
	})
}

// UploadAvatar stores the multipart "avatar" image and points the profile at it.
// The previous avatar object is removed on a best-effort basis.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes+(64<<10))
	file, _, err := r.FormFile("avatar")
	if err != nil {
		httpx.Error(w, r, models.NewValidationError("avatar file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		httpx.Error(w, r, models.NewValidationError("could not read avatar"))
		return
	}
	if len(data) == 0 || len(data) > maxAvatarBytes {
		httpx.Error(w, r, models.NewValidationError("avatar must be between 1 byte and 2MB"))
		return
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		httpx.Error(w, r, models.NewValidationError("avatar must be an image"))
		return
	}

	prev, err := h.users.GetUserByID(r.Context(), caller.ID)
	if err != nil {
		httpx.Error(w, r, userError(err))
		return
	}

	key := "avatars/" + caller.ID + "/" + uuid.NewString()
	if err := h.files.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		httpx.Error(w, r, err)
		return
	}
	user, err := h.users.SetAvatar(r.Context(), caller.ID, key)
	if err != nil {
		httpx.Error(w, r, userError(err))
		return
	}

	if prev.Avatar != "" && prev.Avatar != key {
		if err := h.files.Remove(r.Context(), prev.Avatar); err != nil {
			slog.WarnContext(r.Context(), "remove old avatar", "key", prev.Avatar, "error", err)
		}
	}
	httpx.WriteJSON(w, http.StatusOK, models.ProfileOf(user))
}

// GetAvatar streams a user's avatar to anyone.
func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, userError(err))
		return
	}
	if user.Avatar == "" {
		httpx.Error(w, r, models.NewNotFoundError("Avatar"))
		return
	}

	body, contentType, err := h.files.Get(r.Context(), user.Avatar)
	if errors.Is(err, store.ErrNotFound) {
		httpx.Error(w, r, models.NewNotFoundError("Avatar"))
		return
	}
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.WarnContext(r.Context(), "stream avatar", "key", user.Avatar, "error", err)
	}
}

// Activity lists the caller's most recent signup, login and refresh attempts.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	events, err := h.activity.RecentEvents(r.Context(), caller.ID, activityLimit)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if events == nil {
		events = []models.AuthEvent{}
	}
	httpx.WriteJSON(w, http.StatusOK, events)
}

func userError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return models.NewNotFoundError("User")
	}
	return err
}
