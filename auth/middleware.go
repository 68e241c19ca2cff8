package auth

import (
	"context"
	"net/http"
)

type ctxKey struct{}

// Middleware extracts the Authorization header into a fresh TokenHolder and
// stores it in the request context. A missing header is not an error here;
// handlers that never call the partner API stay reachable without a token.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holder := NewTokenHolder()
		if token := ParseBearer(r.Header.Get("Authorization")); token != "" {
			holder.SetToken(token)
		}
		next.ServeHTTP(w, r.WithContext(WithHolder(r.Context(), holder)))
	})
}

func WithHolder(ctx context.Context, holder *TokenHolder) context.Context {
	return context.WithValue(ctx, ctxKey{}, holder)
}

// FromContext returns the request's TokenHolder. An empty holder is returned
// when the middleware did not run, so callers always get a non-nil value.
func FromContext(ctx context.Context) *TokenHolder {
	if holder, ok := ctx.Value(ctxKey{}).(*TokenHolder); ok {
		return holder
	}
	return NewTokenHolder()
}
