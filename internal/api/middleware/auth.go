package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

// Header names set by the identity-aware proxy fronting the app. The
// backend never mints credentials of its own; every downstream call runs
// with the forwarded identity.
const (
	HeaderForwardedEmail = "X-Forwarded-Email"
	HeaderForwardedToken = "X-Forwarded-Access-Token"
)

type credentialsKey struct{}

// CredentialsFromContext returns the forwarded credentials stored by
// AuthMiddleware. The zero value is returned when none are present.
func CredentialsFromContext(ctx context.Context) entities.Credentials {
	creds, _ := ctx.Value(credentialsKey{}).(entities.Credentials)
	return creds
}

// WithCredentials stores credentials on the context. Exposed for handler
// tests.
func WithCredentials(ctx context.Context, creds entities.Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// AuthMiddleware extracts the proxy-forwarded identity and rejects requests
// that arrive without an access token. Requests are never served with a
// fallback identity.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds := entities.Credentials{
			Email: r.Header.Get(HeaderForwardedEmail),
			Token: r.Header.Get(HeaderForwardedToken),
		}
		if !creds.Valid() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "missing forwarded access token",
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCredentials(r.Context(), creds)))
	})
}
