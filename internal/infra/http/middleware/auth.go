package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/naass/lead-api/internal/usecase"
)

type TokenVerifier interface {
	Verify(token string) (*usecase.AdminClaims, error)
}

type claimsKey struct{}

// RequireAdmin admits requests carrying a valid admin bearer token.
func RequireAdmin(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Access denied. No token provided.")
				return
			}
			claims, err := v.Verify(token)
			if err != nil {
				unauthorized(w, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AdminFromContext(ctx context.Context) (*usecase.AdminClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*usecase.AdminClaims)
	return c, ok
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
