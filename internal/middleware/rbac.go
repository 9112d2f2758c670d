package middleware

import (
	"net/http"

	"medidocs/internal/models"
)

// RequireRole allows only actors holding the given role
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return RequireAnyRole(role)
}

// RequireAnyRole allows actors holding any of the given roles
func RequireAnyRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
