package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "userID"

// Where RequireAuth looks for a token, in order.
const (
	HeaderToken = "x-auth-token"
	CookieToken = "token"
)

// RequireAuth is the authentication gate for protected routes.
//
// The token is read from "Authorization: Bearer <jwt>", then the
// x-auth-token header, then the "token" cookie set by GitHub sign-in. A
// missing or invalid token ends the request with 401 and the wrapped handler
// never runs; otherwise the user ID is stored in the request context.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				deny(w, "No token, authorization denied")
				return
			}

			userID, err := tokens.Validate(raw)
			if err != nil {
				deny(w, "Token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID. Handlers read it back
// with UserIDFromContext.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) on routes without RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func tokenFromRequest(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if tok := strings.TrimSpace(parts[1]); tok != "" {
				return tok
			}
		}
	}

	if tok := strings.TrimSpace(r.Header.Get(HeaderToken)); tok != "" {
		return tok
	}

	if c, err := r.Cookie(CookieToken); err == nil {
		return c.Value
	}

	return ""
}

func deny(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"msg":"` + msg + `"}`))
}
