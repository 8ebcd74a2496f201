package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type claimsKey struct{}

// WithClaims returns a context carrying verified token claims.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims stored by RequireToken, or false when the
// request did not pass through the middleware.
func ClaimsFrom(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.MapClaims)
	return claims, ok
}

// VerifyRequest extracts the bearer token from the request's configured
// header and verifies it.
func (v *Verifier) VerifyRequest(r *http.Request) (jwt.MapClaims, error) {
	header := r.Header.Get(v.config.HeaderName)
	if header == "" {
		return nil, ErrMissingToken
	}

	tokenString := strings.TrimPrefix(header, v.config.TokenPrefix)
	if tokenString == header {
		return nil, ErrMissingToken
	}

	return v.Verify(r.Context(), strings.TrimSpace(tokenString))
}

// RequireToken returns HTTP middleware enforcing bearer-token auth. Requests
// without a valid token receive 401 with a WWW-Authenticate challenge;
// verified claims ride the request context for downstream handlers.
//
// Usage:
//
//	mux.Handle("/health", auth.RequireToken(v)(graph.ReportHandler(g)))
func RequireToken(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.VerifyRequest(r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
