package chi

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/auth"
	"github.com/kailas-cloud/catalograg/internal/logger"
	gen "github.com/kailas-cloud/catalograg/internal/transport/generated"
)

type claimsKey struct{}

// ClaimsFrom returns the verified token claims stored by RequireRole.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

// BearerAuth returns an operation middleware for the generated router. The
// generated wrapper stores the roles an operation admits under
// generated.BearerAuthScopes; operations without them are public.
func BearerAuth(verifier TokenVerifier) gen.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scopes, secured := r.Context().Value(gen.BearerAuthScopes).([]string)
			if !secured {
				next.ServeHTTP(w, r)
				return
			}
			RequireRole(verifier, rolesOf(scopes)...)(next).ServeHTTP(w, r)
		})
	}
}

func rolesOf(scopes []string) []auth.Role {
	roles := make([]auth.Role, len(scopes))
	for i, s := range scopes {
		roles[i] = auth.Role(s)
	}
	return roles
}

// RequireRole returns a middleware that validates a Bearer token and admits
// only the listed roles.
func RequireRole(verifier TokenVerifier, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(header, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			claims, err := verifier.Parse(strings.TrimSpace(header[len(bearerPrefix):]))
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "token expired"
				}
				writeError(w, http.StatusUnauthorized, msg)
				return
			}

			if !slices.Contains(roles, claims.Role) {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			ctx = logger.With(ctx, zap.Int64("user_id", claims.UserID), zap.String("role", string(claims.Role)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
