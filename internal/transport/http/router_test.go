package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/wordsanctuary/training-portal/internal/application/session"
	"github.com/wordsanctuary/training-portal/internal/config"
	"github.com/wordsanctuary/training-portal/internal/infrastructure/metrics"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("CENTRAL_SYSTEM_FRONTEND_URL", "http://localhost:3001")
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	return NewRouter(cfg, &Deps{Observer: metrics.MustNew(reg), Gatherer: reg}, nil)
}

func do(h http.Handler, method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_HealthCheck(t *testing.T) {
	rr := do(newTestRouter(t), http.MethodGet, "/health-check/ping")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}

func TestRouter_GuardsProtectedPages(t *testing.T) {
	h := newTestRouter(t)

	rr := do(h, http.MethodGet, "/trainee/interview-questions")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/signin", rr.Header().Get("Location"))

	rr = do(h, http.MethodGet, "/signin", &http.Cookie{Name: session.CredentialCookie, Value: "tok"})
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/trainee", rr.Header().Get("Location"))
}

func TestRouter_SignInPageRenders(t *testing.T) {
	rr := do(newTestRouter(t), http.MethodGet, "/signin")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
}

func TestRouter_ReceiverPreflight(t *testing.T) {
	rr := do(newTestRouter(t), http.MethodOptions, "/api/data-receiver")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3001", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_Metrics(t *testing.T) {
	rr := do(newTestRouter(t), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_UnknownPage(t *testing.T) {
	rr := do(newTestRouter(t), http.MethodGet, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Page not found")
}

func signInFrom(h http.Handler, n int) (limited int) {
	for i := range n {
		req := httptest.NewRequest(http.MethodPost, "/signin", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	return limited
}

func TestRouter_RateLimitIgnoresForwardedForByDefault(t *testing.T) {
	assert.Positive(t, signInFrom(newTestRouter(t), 15))
}

func TestRouter_RateLimitHonoursForwardedForBehindProxy(t *testing.T) {
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	assert.Zero(t, signInFrom(newTestRouter(t), 15))
}
