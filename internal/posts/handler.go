// Package posts serves the owner-scoped draft editor routes and the public
// read-only view of published posts.
package posts

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

// PostStore defines the interface for post persistence. Every private method
// takes the caller's id and treats a post owned by someone else as missing.
type PostStore interface {
	CreatePost(ctx context.Context, p *models.Post) error
	ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	GetPostForAuthor(ctx context.Context, id, authorID string) (*models.Post, error)
	UpdatePostForAuthor(ctx context.Context, id, authorID string, upd models.PostUpdate) (*models.Post, error)
	PublishPostForAuthor(ctx context.Context, id, authorID string) (*models.Post, error)
	UnpublishPostForAuthor(ctx context.Context, id, authorID string) (*models.Post, error)
	DeletePostForAuthor(ctx context.Context, id, authorID string) error
	GetPublishedPost(ctx context.Context, id string) (*models.Post, error)
	ListPublished(ctx context.Context) ([]models.Post, error)
}

// AuthorDirectory resolves author ids to display names.
type AuthorDirectory interface {
	UserNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Handler holds post HTTP handlers.
type Handler struct {
	posts   PostStore
	authors AuthorDirectory
}

func NewHandler(posts PostStore, authors AuthorDirectory) *Handler {
	return &Handler{posts: posts, authors: authors}
}

// List returns the caller's posts without their content, newest edit first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	list, err := h.posts.ListPostsByAuthor(r.Context(), caller.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	out := make([]models.PostSummary, 0, len(list))
	for _, p := range list {
		out = append(out, models.PostSummary{
			ID:          p.ID,
			Title:       p.Title,
			Status:      p.Status,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
			PublishedAt: p.PublishedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Create stores a new draft owned by the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req models.PostCreate
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpx.Error(w, r, models.NewValidationError("title is required"))
		return
	}

	post := &models.Post{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: caller.ID,
	}
	if err := h.posts.CreatePost(r.Context(), post); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, post)
}

// Get loads one of the caller's posts into the editor. A missing post gets
// the soft {"error"} body the editor expects.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	post, err := h.posts.GetPostForAuthor(r.Context(), chi.URLParam(r, "id"), caller.ID)
	if errors.Is(err, store.ErrNotFound) {
		httpx.SoftNotFound(w, "Post not found")
		return
	}
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

// Update is the autosave target: it sets whichever of title and content are present.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req models.PostUpdate
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if req.Title == nil && req.Content == nil {
		httpx.Error(w, r, models.NewValidationError("No fields to update"))
		return
	}

	post, err := h.posts.UpdatePostForAuthor(r.Context(), chi.URLParam(r, "id"), caller.ID, req)
	if err != nil {
		httpx.Error(w, r, postError(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

// Delete removes the post and its comments.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	if err := h.posts.DeletePostForAuthor(r.Context(), chi.URLParam(r, "id"), caller.ID); err != nil {
		httpx.Error(w, r, postError(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

// Publish makes the post public. Publishing twice keeps the first publishedAt.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.posts.PublishPostForAuthor)
}

// Unpublish returns the post to draft.
func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.posts.UnpublishPostForAuthor)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, id, authorID string) (*models.Post, error)) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	post, err := apply(r.Context(), chi.URLParam(r, "id"), caller.ID)
	if err != nil {
		httpx.Error(w, r, postError(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

// PublicList returns every published post with its author's name, without content.
func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	list, err := h.posts.ListPublished(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.AuthorID)
	}
	names, err := h.authors.UserNames(r.Context(), ids)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	out := make([]models.PublicPost, 0, len(list))
	for i := range list {
		pub := publicView(&list[i], names[list[i].AuthorID])
		pub.Content = nil
		out = append(out, pub)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// PublicGet returns a published post to any reader. Drafts are 404.
func (h *Handler) PublicGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPublishedPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, postError(err))
		return
	}

	names, err := h.authors.UserNames(r.Context(), []string{post.AuthorID})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, publicView(post, names[post.AuthorID]))
}

func publicView(p *models.Post, authorName string) models.PublicPost {
	return models.PublicPost{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Status:      p.Status,
		AuthorID:    p.AuthorID,
		AuthorName:  authorName,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		PublishedAt: p.PublishedAt,
	}
}

func postError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return models.NewNotFoundError("Post")
	}
	return err
}
