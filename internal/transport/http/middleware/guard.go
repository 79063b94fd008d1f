package middleware

import (
	"net/http"
	"strings"

	"github.com/wordsanctuary/training-portal/internal/application/session"
	"github.com/wordsanctuary/training-portal/internal/pkg/jar"
)

// GuardConfig lists the credential-gated path prefixes and where to send
// visitors on either side of the gate.
type GuardConfig struct {
	Protected    []string
	SignIn       string
	DefaultRoute string
}

// RouteGuard redirects requests for protected paths to sign-in when no
// credential cookie is present, and signed-in visitors away from sign-in.
// Prefix matching is on the raw string, so "/trainee" also gates
// "/traineeship".
func RouteGuard(cfg GuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			signedIn := session.HasCredential(jar.FromRequest(nil, r))
			path := r.URL.Path
			switch {
			case !signedIn && protected(cfg.Protected, path):
				http.Redirect(w, r, cfg.SignIn, http.StatusFound)
				return
			case signedIn && path == cfg.SignIn:
				http.Redirect(w, r, cfg.DefaultRoute, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func protected(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
