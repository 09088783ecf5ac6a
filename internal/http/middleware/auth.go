package middleware

import (
	"context"
	"net/http"
	"strings"

	"powerbill/internal/service"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	tokenKey  contextKey = "token"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*service.Claims, error)
}

// SessionChecker reports whether a live session backs a token, so logout
// invalidates tokens before their JWT expiry.
type SessionChecker interface {
	Exists(ctx context.Context, token string) (bool, error)
}

// Auth validates bearer tokens, checks the session record and stores the
// user id and token on the request context.
func Auth(tokens TokenValidator, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimSpace(parts[1])

			claims, err := tokens.ValidateToken(tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			alive, err := sessions.Exists(r.Context(), tokenStr)
			if err != nil {
				http.Error(w, "failed to verify session", http.StatusInternalServerError)
				return
			}
			if !alive {
				http.Error(w, "session expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, tokenKey, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user id.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// TokenFromContext retrieves the raw bearer token.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
