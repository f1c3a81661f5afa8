package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/usergate/usergate-go/internal/auth"
	"github.com/usergate/usergate-go/internal/middleware"
	"github.com/usergate/usergate-go/internal/token"
)

// NewRouter assembles the HTTP surface. The authentication gate runs on
// every request and never rejects; protected routes enforce through
// RequireAuth.
func NewRouter(users *UserHandler, tokens *token.Service, identities auth.Loader) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Authenticate(tokens, identities))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", users.HandleRegister)
		r.Post("/login", users.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", users.HandleList)
			r.Get("/{email}", users.HandleGet)
			r.Put("/", users.HandleUpdate)
			r.Delete("/{email}", users.HandleDelete)
		})
	})

	return r
}
