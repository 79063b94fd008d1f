package middleware

import (
	"context"
	"net/http"

	"github.com/wordsanctuary/training-portal/internal/application/session"
	"github.com/wordsanctuary/training-portal/internal/pkg/jar"
)

type contextKey string

const jarKey contextKey = "jar"

// Session loads the client's session from its cookies and injects both the
// cookie jar and the session store into the request context. onLevelChange,
// when non-nil, is registered on every store.
func Session(opts session.Options, onLevelChange func(level string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			j := jar.FromRequest(w, r)
			store := session.Load(j, opts)
			if onLevelChange != nil {
				store.OnLevelChange(onLevelChange)
			}
			ctx := context.WithValue(r.Context(), jarKey, j)
			ctx = session.NewContext(ctx, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// JarFromContext extracts the request's cookie jar.
func JarFromContext(ctx context.Context) (jar.Jar, bool) {
	j, ok := ctx.Value(jarKey).(*jar.HTTP)
	return j, ok
}
