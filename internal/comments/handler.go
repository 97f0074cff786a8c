package comments

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ayush/syncdraft/internal/auth"
	"github.com/ayush/syncdraft/internal/httpx"
	"github.com/ayush/syncdraft/internal/models"
	"github.com/ayush/syncdraft/internal/store"
)

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	ListCommentsByPost(ctx context.Context, postID string) ([]models.Comment, error)
	GetComment(ctx context.Context, id, postID string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id, postID string) error
}

// PublishedPosts is the only view of posts comments need.
type PublishedPosts interface {
	GetPublishedPost(ctx context.Context, id string) (*models.Post, error)
}

// AuthorDirectory resolves author ids to display names.
type AuthorDirectory interface {
	UserNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Handler holds comment HTTP handlers.
type Handler struct {
	comments CommentStore
	posts    PublishedPosts
	authors  AuthorDirectory
}

func NewHandler(comments CommentStore, posts PublishedPosts, authors AuthorDirectory) *Handler {
	return &Handler{comments: comments, posts: posts, authors: authors}
}

// Create adds a comment by the caller to a published post. Drafts and
// missing posts get the soft {"error"} body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req models.CommentCreate
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		httpx.Error(w, r, models.NewValidationError("body is required"))
		return
	}

	postID := chi.URLParam(r, "id")
	if _, err := h.posts.GetPublishedPost(r.Context(), postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.SoftNotFound(w, "Post not found")
			return
		}
		httpx.Error(w, r, err)
		return
	}

	c := models.Comment{
		ID:       uuid.NewString(),
		PostID:   postID,
		AuthorID: caller.ID,
		Body:     body,
	}
	if err := h.comments.CreateComment(r.Context(), &c); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, models.CommentView{Comment: c, AuthorName: caller.Name})
}

// List returns a published post's comments, newest first, each with its
// author's name. Drafts and missing posts are 404.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	if _, err := h.posts.GetPublishedPost(r.Context(), postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = models.NewNotFoundError("Post")
		}
		httpx.Error(w, r, err)
		return
	}

	list, err := h.comments.ListCommentsByPost(r.Context(), postID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.AuthorID)
	}
	names, err := h.authors.UserNames(r.Context(), ids)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	out := make([]models.CommentView, 0, len(list))
	for _, c := range list {
		out = append(out, models.CommentView{Comment: c, AuthorName: names[c.AuthorID]})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Delete removes the caller's own comment. A missing comment is 404 and
// someone else's is 403.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	postID, commentID := chi.URLParam(r, "id"), chi.URLParam(r, "commentId")
	c, err := h.comments.GetComment(r.Context(), commentID, postID)
	if err != nil {
		httpx.Error(w, r, commentError(err))
		return
	}
	if c.AuthorID != caller.ID {
		httpx.Error(w, r, models.NewForbiddenError("Not authorized to delete this comment"))
		return
	}

	if err := h.comments.DeleteComment(r.Context(), commentID, postID); err != nil {
		httpx.Error(w, r, commentError(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

func commentError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return models.NewNotFoundError("Comment")
	}
	return err
}
