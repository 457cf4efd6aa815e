package httpapi

import (
	"context"
	"net/http"
	"strings"

	"portfolio-backend-go/internal/models"
	"portfolio-backend-go/internal/services"
)

type contextKey string

const ctxClaims contextKey = "claims"

// bearerToken extracts the credential from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Authenticated admits requests carrying a valid session token. No token is
// 401; a token that fails validation is 403.
func Authenticated(tokens services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				WriteError(w, http.StatusUnauthorized, "Access denied")
				return
			}
			claims, err := tokens.Validate(tokenStr)
			if err != nil {
				WriteError(w, http.StatusForbidden, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly must run after Authenticated.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := CurrentClaims(r)
		if claims == nil || claims.Role != models.RoleAdmin {
			WriteError(w, http.StatusForbidden, "Access denied. Admin only.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func CurrentClaims(r *http.Request) *services.Claims {
	if value, ok := r.Context().Value(ctxClaims).(*services.Claims); ok {
		return value
	}
	return nil
}

func CurrentUserID(r *http.Request) int64 {
	if claims := CurrentClaims(r); claims != nil {
		return claims.ID
	}
	return 0
}
