package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/usergate/usergate-go/internal/auth"
	"github.com/usergate/usergate-go/internal/token"
)

type contextKey string

const authKey contextKey = "authentication"

// Authentication is the per-request authenticated context: a validated
// identity plus request metadata. It exists only for the lifetime of one
// request and is never shared across requests.
type Authentication struct {
	Identity   auth.Identity
	RemoteAddr string
	SessionID  string
}

// Authenticate returns the gate middleware that populates the request's
// authenticated context from a bearer token. It is fail-open: a missing,
// malformed, expired, or mismatched token leaves the request anonymous and
// processing continues. Rejection of anonymous requests on protected
// routes is RequireAuth's job.
func Authenticate(tokens *token.Service, identities auth.Loader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			subject, err := tokens.ExtractSubject(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// First-wins guard: never overwrite an authentication set
			// earlier in the chain.
			if _, already := AuthenticationFromContext(r.Context()); already {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := identities.LoadIdentity(r.Context(), subject)
			if err != nil {
				// Unknown identity or store failure: degrade to anonymous.
				next.ServeHTTP(w, r)
				return
			}

			if !tokens.Valid(raw, identity.Email) {
				next.ServeHTTP(w, r)
				return
			}

			authn := Authentication{
				Identity:   identity,
				RemoteAddr: r.RemoteAddr,
				SessionID:  RequestIDFromContext(r.Context()),
			}
			ctx := context.WithValue(r.Context(), authKey, authn)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests whose authenticated context is empty. Mount
// it after Authenticate on protected routes.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := AuthenticationFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthenticationFromContext extracts the authenticated context, if any.
func AuthenticationFromContext(ctx context.Context) (Authentication, bool) {
	authn, ok := ctx.Value(authKey).(Authentication)
	return authn, ok
}

// WithAuthentication returns a context carrying the given authentication.
// Used by tests and by any caller that authenticates out of band.
func WithAuthentication(ctx context.Context, authn Authentication) context.Context {
	return context.WithValue(ctx, authKey, authn)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
