package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/authkeeper/internal/server/auth"
	"github.com/iudanet/authkeeper/internal/server/handlers"
)

// RequireAuth reports whether path is subject to authentication given the
// excluded-path list. A path is excluded by exact match, by match with a
// trailing slash added, or by an entry ending in '*' that prefixes it.
func RequireAuth(path string, excludedPaths []string) bool {
	if path == "" || len(excludedPaths) == 0 {
		return true
	}

	for _, excluded := range excludedPaths {
		if excluded == "" {
			continue
		}
		if path == excluded || path+"/" == excluded {
			return false
		}
		if strings.HasSuffix(excluded, "*") && strings.HasPrefix(path, excluded[:len(excluded)-1]) {
			return false
		}
	}

	return true
}

// BasicAuthMiddleware authenticates requests with a CredentialResolver.
// Paths matching excludedPaths pass through untouched. For the rest, a
// missing Authorization header yields 401, an unresolvable one 403, and a
// resolved user is stored in the request context under handlers.UserKey.
func BasicAuthMiddleware(logger *slog.Logger, resolver auth.CredentialResolver, excludedPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RequireAuth(r.URL.Path, excludedPaths) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				logger.Warn("missing Authorization header", "path", r.URL.Path)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user := resolver.Resolve(r.Context(), header)
			if user == nil {
				logger.Warn("basic auth failed", "path", r.URL.Path)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			logger.Debug("user authenticated",
				"user_id", user.ID,
				"email", user.Email)

			ctx := context.WithValue(r.Context(), handlers.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
