package identity

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

const SessionCookie = "session"

// Middleware attaches the resolved user id to the request context. Requests
// without a valid session pass through anonymously; the services decide
// whether that is acceptable.
func Middleware(resolver Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, ErrNoSession) {
					logger.Warn("failed to resolve session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}

func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
