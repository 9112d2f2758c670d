package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"medidocs/internal/auth"
	"medidocs/internal/models"
)

type contextKey string

const actorKey contextKey = "actor"

// UserLookup resolves directory users; nil, nil means unknown
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.DirectoryUser, error)
}

// AuthMiddleware validates JWT tokens and places the acting identity in the request context
type AuthMiddleware struct {
	authService *auth.Service
	users       UserLookup
}

// NewAuthMiddleware creates a new auth middleware. With a non-nil users lookup, tokens
// of users who are unknown or deactivated in the directory are refused.
func NewAuthMiddleware(authService *auth.Service, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		users:       users,
	}
}

// Authenticate validates the bearer token and adds the actor to the context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		actor := claims.Actor()

		if m.users != nil {
			user, err := m.users.GetUser(r.Context(), actor.ID)
			if err != nil {
				slog.Error("Failed to resolve token user", "user_id", actor.ID, "error", err)
				respondWithError(w, http.StatusInternalServerError, "Failed to resolve user")
				return
			}
			if user == nil || !user.IsActive {
				respondWithError(w, http.StatusUnauthorized, "User is not active")
				return
			}
			// the directory is authoritative for role and department
			actor = user.Actor()
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor returns a context carrying the actor
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor retrieves the authenticated actor from the request context
func GetActor(r *http.Request) (models.Actor, bool) {
	actor, ok := r.Context().Value(actorKey).(models.Actor)
	return actor, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
