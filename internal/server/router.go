// Package server assembles the HTTP router from the resource handlers.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/syncdraft/internal/ai"
	"github.com/ayush/syncdraft/internal/auth"
	"github.com/ayush/syncdraft/internal/comments"
	"github.com/ayush/syncdraft/internal/httpx"
	"github.com/ayush/syncdraft/internal/middleware"
	"github.com/ayush/syncdraft/internal/posts"
	"github.com/ayush/syncdraft/internal/users"
)

// Store is everything the handlers need from the document store.
type Store interface {
	auth.UserStore
	posts.PostStore
	comments.CommentStore
	users.UserStore
	UserNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Deps are the constructed collaborators the router is built from.
// Nil optional fields leave the routes that need them unmounted.
type Deps struct {
	AllowedOrigins []string
	Store          Store
	Codec          *auth.TokenCodec
	AI             *ai.Service

	Audit    auth.AuditLog     // optional
	Activity users.ActivityLog // optional
	Avatars  users.FileStore   // optional
	Metrics  http.Handler      // optional
}

// NewRouter wires middleware and every route.
func NewRouter(d Deps) http.Handler {
	resolver := auth.NewResolver(d.Codec, d.Store)
	requireAuth := middleware.RequireAuth(resolver)

	authHandler := auth.NewHandler(d.Store, d.Codec, resolver, d.Audit)
	postHandler := posts.NewHandler(d.Store, d.Store)
	commentHandler := comments.NewHandler(d.Store, d.Store, d.Store)
	userHandler := users.NewHandler(d.Store, d.Avatars, d.Activity)
	aiHandler := ai.NewHandler(d.AI)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(middleware.Observe)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", postHandler.List)
		r.Post("/", postHandler.Create)
		r.Get("/{id}", postHandler.Get)
		r.Patch("/{id}", postHandler.Update)
		r.Delete("/{id}", postHandler.Delete)
		r.Post("/{id}/publish", postHandler.Publish)
		r.Post("/{id}/unpublish", postHandler.Unpublish)
		r.Post("/{id}/comments", commentHandler.Create)
		r.Delete("/{id}/comments/{commentId}", commentHandler.Delete)
	})

	r.Route("/api/public/posts", func(r chi.Router) {
		r.Get("/", postHandler.PublicList)
		r.Get("/{id}", postHandler.PublicGet)
		r.Get("/{id}/comments", commentHandler.List)
	})

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", userHandler.GetProfile)
			r.Patch("/profile", userHandler.PatchProfile)
			if d.Avatars != nil {
				r.Put("/profile/avatar", userHandler.UploadAvatar)
			}
			if d.Activity != nil {
				r.Get("/profile/activity", userHandler.Activity)
			}
		})
		if d.Avatars != nil {
			r.Get("/{id}/avatar", userHandler.GetAvatar)
		}
	})

	r.With(requireAuth).Post("/api/ai/generate", aiHandler.Generate)

	return r
}
