// Package middleware carries the HTTP session layer: bearer-token parsing and
// the actor identity handlers read from the request context.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nyumbani/visits-api/internal/http/response"
	"github.com/nyumbani/visits-api/pkg/auth"
	"github.com/nyumbani/visits-api/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "session_claims"

// Claims returns the session claims attached by RequireSession or
// OptionalSession, or nil for an anonymous request.
func Claims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

// ActorID returns the authenticated subject, or "" for anonymous requests.
func ActorID(r *http.Request) string {
	if c := Claims(r); c != nil {
		return c.Sub
	}
	return ""
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireSession rejects requests without a valid bearer token.
func RequireSession(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Unauthorized(w, "missing bearer token")
				return
			}

			claims, err := auth.Parse(token, secret)
			if err != nil {
				logger.DebugContext(r.Context(), "rejected session token", "error", err)
				response.WriteError(w, http.StatusUnauthorized, "invalid or expired token", response.CodeInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, logger.ActorIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession attaches claims when a valid token is present and lets
// anonymous requests through untouched. A malformed token is still an error:
// a caller who identifies themselves must do it correctly.
func OptionalSession(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.Parse(token, secret)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid or expired token", response.CodeInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, logger.ActorIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
