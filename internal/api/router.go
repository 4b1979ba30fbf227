package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/api/handler"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/api/middleware"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/auth"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/storage"
)

// NewRouter creates a new HTTP router with all routes configured.
// Registration, login, and group discovery are public; everything else
// sits behind the identity-resolving middleware, which guarantees the
// handlers always see a fully resolved user before any authorization
// check runs.
func NewRouter(
	store storage.Storage,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	requestTimeout time.Duration,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(chimw.Timeout(requestTimeout))

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	identityHandler := handler.NewIdentityHandler(store, hasher, tokens)
	groupHandler := handler.NewGroupHandler(store)
	postHandler := handler.NewPostHandler(store)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentType)

		// Public: registration, login, group discovery
		r.Post("/identities", identityHandler.Register)
		r.Post("/sessions", identityHandler.Login)
		r.Get("/groups", groupHandler.List)
		r.Get("/groups/{id}", groupHandler.Get)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(store, tokens))

			r.Get("/session", identityHandler.Session)

			r.Post("/groups", groupHandler.Create)
			r.Delete("/groups/{id}", groupHandler.Delete)
			r.Post("/groups/{id}/members", groupHandler.Join)

			r.Post("/groups/{id}/posts", postHandler.Create)
			r.Get("/groups/{id}/posts", postHandler.List)
			r.Put("/posts/{id}", postHandler.Update)
			r.Delete("/posts/{id}", postHandler.Delete)
		})
	})

	return r
}
