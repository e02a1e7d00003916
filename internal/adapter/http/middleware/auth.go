package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/abbaskhatri/bynkbook/internal/infrastructure/auth"
	"github.com/abbaskhatri/bynkbook/internal/infrastructure/logging"
)

// ContextKey is the type for context keys.
type ContextKey string

const (
	// ActorContextKey is the context key for the authenticated actor.
	ActorContextKey ContextKey = "actor"
)

// Actor identifies who performs a request and the business scope the
// token grants.
type Actor struct {
	Name       string
	BusinessID string
}

// AuthMiddleware creates an authentication middleware.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			actor := &Actor{
				Name:       claims.Actor,
				BusinessID: claims.BusinessID,
			}

			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
		})
	}
}

// withActor stores the actor for handlers and mirrors it into the
// logging keys so request-scoped log lines carry who acted.
func withActor(ctx context.Context, actor *Actor) context.Context {
	ctx = context.WithValue(ctx, ActorContextKey, actor)
	ctx = context.WithValue(ctx, logging.ActorKey, actor.Name)
	ctx = context.WithValue(ctx, logging.BusinessIDKey, actor.BusinessID)
	return ctx
}

// OptionalAuth extracts the actor if a valid token is present but never
// rejects the request.
func OptionalAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				claims, err := jwtManager.Verify(parts[1])
				if err == nil {
					actor := &Actor{
						Name:       claims.Actor,
						BusinessID: claims.BusinessID,
					}
					next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetActorFromContext extracts the authenticated actor from context.
func GetActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(*Actor)
	return actor, ok
}
