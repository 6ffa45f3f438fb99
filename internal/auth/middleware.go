package auth

import (
	"net/http"
	"strings"

	"github.com/mnb-billing/mnb-pos/internal/platform/httpx"
	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// Middleware guards routes with bearer-token authentication.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs the auth middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Authenticate verifies the bearer token and stores the principal in context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			httpx.Fail(w, http.StatusUnauthorized, "Access token required", "")
			return
		}
		claims, err := m.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			httpx.Fail(w, http.StatusUnauthorized, "Invalid or expired token", "")
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), shared.Principal{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects principals whose role is not listed.
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.Fail(w, http.StatusUnauthorized, "Access token required", "")
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Fail(w, http.StatusForbidden, "Insufficient permissions", "")
		})
	}
}
