package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wordsanctuary/training-portal/internal/application/session"
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

var guardCfg = GuardConfig{
	Protected:    []string{"/trainee", "/training-executive", "/supreme", "/select-training", "/settings"},
	SignIn:       "/signin",
	DefaultRoute: "/trainee",
}

func serveGuarded(path string, credential bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if credential {
		req.AddCookie(&http.Cookie{Name: session.CredentialCookie, Value: "tok"})
	}
	rr := httptest.NewRecorder()
	RouteGuard(guardCfg)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	return rr
}

func TestRouteGuard_ProtectedWithoutCredential(t *testing.T) {
	for _, path := range []string{"/trainee/anything", "/trainee", "/supreme/dashboard", "/settings", "/traineeship"} {
		rr := serveGuarded(path, false)
		assert.Equal(t, http.StatusFound, rr.Code, path)
		assert.Equal(t, "/signin", rr.Header().Get("Location"), path)
	}
}

func TestRouteGuard_ProtectedWithCredential(t *testing.T) {
	rr := serveGuarded("/trainee/anything", true)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouteGuard_SignInWithCredential(t *testing.T) {
	rr := serveGuarded("/signin", true)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/trainee", rr.Header().Get("Location"))
}

func TestRouteGuard_PublicPathsPass(t *testing.T) {
	for _, path := range []string{"/", "/signin", "/verification", "/data-receiver", "/api/data-receiver"} {
		rr := serveGuarded(path, false)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
	assert.Equal(t, http.StatusOK, serveGuarded("/verification", true).Code)
}

func TestRouteGuard_EmptyCredentialIsAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/trainee", nil)
	req.AddCookie(&http.Cookie{Name: session.CredentialCookie, Value: ""})
	rr := httptest.NewRecorder()
	RouteGuard(guardCfg)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusFound, rr.Code)
}
