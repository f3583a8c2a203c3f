// Package middleware guards the API with the anonymous session tokens
// minted by handlers/auth.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"memeboard/handlers/auth"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type contextKey string

const claimsContextKey = contextKey("claims")

// AuthJWT admits requests carrying a valid bearer session token and
// exposes its claims on the request context.
func AuthJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "Authorization header is required"})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ParseJWT(tokenString)
		if err != nil {
			logrus.WithError(err).Debug("Rejected session token")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "Invalid or expired session"})
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Claims returns the session claims stored by AuthJWT, if any.
func Claims(ctx context.Context) (*auth.AppClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.AppClaims)
	return claims, ok
}

// Subject returns the session subject for log fields. Empty outside an
// authenticated request.
func Subject(ctx context.Context) string {
	if claims, ok := Claims(ctx); ok {
		return claims.Subject
	}
	return ""
}
