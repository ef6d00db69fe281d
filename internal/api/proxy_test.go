package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lambdaless-api/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitProxyPath(t *testing.T) {
	tests := []struct {
		in, name, rest string
	}{
		{"/ipify", "ipify", ""},
		{"/ipify/", "ipify", ""},
		{"/ipify/v1/lookup", "ipify", "/v1/lookup"},
		{"/", "", ""},
	}
	for _, tt := range tests {
		name, rest := splitProxyPath(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.rest, rest, tt.in)
	}
}

// newProxyTestServer serves the proxy routes over a real listener so the
// reverse proxy sees a server-issued request context.
func newProxyTestServer(t *testing.T, routes ...config.ProxyRoute) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestMetaMiddleware())
	registerProxyRoutes(router, config.ProxyConfig{Routes: routes, Timeout: 2 * time.Second}, zerolog.Nop())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func proxyRequest(t *testing.T, srv *httptest.Server, method, path string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestProxyForwarding(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, "203.0.113.7")
	}))
	defer upstream.Close()

	base, err := url.Parse(upstream.URL + "/base?format=text")
	require.NoError(t, err)

	srv := newProxyTestServer(t,
		config.ProxyRoute{Name: "ipify", Method: http.MethodGet, Target: base, Exact: true},
		config.ProxyRoute{Name: "api", Method: "ANY", Target: base},
	)

	resp, body := proxyRequest(t, srv, http.MethodGet, "/proxy/ipify")
	assert.Equal(t, http.StatusTeapot, resp.StatusCode, "upstream status passes through")
	assert.Equal(t, "203.0.113.7", body)
	assert.Equal(t, "yes", resp.Header.Get("X-Upstream"))
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/base", gotPath)
	assert.Equal(t, "format=text", gotQuery)

	resp, _ = proxyRequest(t, srv, http.MethodPost, "/proxy/api/v1/items?page=2")
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/base/v1/items", gotPath)
	assert.Equal(t, "format=text&page=2", gotQuery)
}

func TestProxyRejections(t *testing.T) {
	target, _ := url.Parse("http://127.0.0.1:1")
	srv := newProxyTestServer(t,
		config.ProxyRoute{Name: "ipify", Method: http.MethodGet, Target: target, Exact: true},
	)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"unknown route", http.MethodGet, "/proxy/other", http.StatusNotFound},
		{"sub-path on exact route", http.MethodGet, "/proxy/ipify/extra", http.StatusNotFound},
		{"wrong method", http.MethodPost, "/proxy/ipify", http.StatusMethodNotAllowed},
		{"upstream down", http.MethodGet, "/proxy/ipify", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := proxyRequest(t, srv, tt.method, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := newRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1})
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "buckets are per client")

	now = now.Add(2 * time.Second)
	assert.True(t, rl.allow("10.0.0.1"), "tokens refill")

	now = now.Add(limiterIdleTTL + time.Second)
	rl.allow("10.0.0.3")
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "10.0.0.3")
}
