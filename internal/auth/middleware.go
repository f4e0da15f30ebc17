// internal/auth/middleware.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"libris/internal/apperr"
	"libris/internal/httpx"
)

type principalKey struct{}
type tokenKey struct{}

// WithPrincipal stores the verified principal in the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the verified principal from the context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

// WithToken stores the raw bearer token for propagation to downstream
// services on outbound calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext extracts the raw bearer token from the context.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey{}).(string)
	return t, ok && t != ""
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

// Authenticate verifies the bearer token on every request. A missing,
// malformed, or expired token is rejected with 401; the verified principal
// and the raw token are stashed in the request context.
func Authenticate(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				httpx.RespondError(w, apperr.Unauthorizedf("Missing or invalid Authorization header"))
				return
			}

			principal, err := tokens.Verify(raw)
			if err != nil {
				httpx.RespondError(w, apperr.Wrap(apperr.KindUnauthorized, err, verifyMessage(err)))
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			ctx = WithToken(ctx, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the verified principal's role. A request
// that passed Authenticate but carries the wrong role is rejected with 403.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, apperr.Unauthorizedf("Missing or invalid Authorization header"))
				return
			}
			if _, ok := allowed[principal.Role]; !ok {
				httpx.RespondError(w, apperr.Forbiddenf("You are not authorized to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verifyMessage(err error) string {
	if errors.Is(err, ErrTokenExpired) {
		return "Token expired"
	}
	return "Invalid token"
}
