package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshat090803/ecommerce-final-project/internal/config"
	"github.com/Akshat090803/ecommerce-final-project/internal/pkg/auth"
	"github.com/Akshat090803/ecommerce-final-project/internal/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jwtManager() *auth.JWTManager {
	return auth.NewJWTManager(&config.Config{JWT: config.JWTConfig{
		Secret:            "middleware-test-secret-0123456789abcdef",
		Issuer:            "storefront-test",
		AccessTokenExpiry: time.Hour,
	}})
}

func perform(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const testUserID = "3d9c1f0e-7a2b-4c5d-8e6f-9a0b1c2d3e4f"

func TestAuthMiddleware(t *testing.T) {
	m := jwtManager()
	token, err := m.GenerateAccessToken(testUserID, "u1@example.com")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(m), func(c *gin.Context) {
		p, ok := GetPrincipalFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, p.ID)
	})

	w := perform(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Token abc"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer not-a-jwt"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	malformed, err := m.GenerateAccessToken("user-1", "u1@example.com")
	require.NoError(t, err)
	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer " + malformed}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testUserID, w.Body.String())
}

func TestOptionalAuthMiddleware(t *testing.T) {
	m := jwtManager()
	token, err := m.GenerateAccessToken(testUserID, "u1@example.com")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/whoami", OptionalAuthMiddleware(m), func(c *gin.Context) {
		p, ok := IdentitySession(c).CurrentPrincipal(c.Request.Context())
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, p.ID)
	})

	assert.Equal(t, "anonymous", perform(r, http.MethodGet, "/whoami", nil).Body.String())
	assert.Equal(t, "anonymous", perform(r, http.MethodGet, "/whoami",
		http.Header{"Authorization": {"Bearer broken"}}).Body.String())
	assert.Equal(t, testUserID, perform(r, http.MethodGet, "/whoami",
		http.Header{"Authorization": {"Bearer " + token}}).Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := perform(r, http.MethodGet, "/", nil)
	generated := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	w = perform(r, http.MethodGet, "/", http.Header{"X-Request-Id": {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestLogger_LevelByStatus(t *testing.T) {
	log, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(RequestID(), Logger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	perform(r, http.MethodGet, "/ok", nil)
	perform(r, http.MethodGet, "/missing", nil)
	perform(r, http.MethodGet, "/broken", nil)

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[2].Level)
	assert.NotEmpty(t, entries[0].Data["request_id"])
	assert.Equal(t, "/ok", entries[0].Data["route"])
}

func TestCORS(t *testing.T) {
	cfg := &config.Config{Security: config.SecurityConfig{
		CORSAllowedOrigins: []string{"https://shop.example.com", "*.example.org"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Authorization", "Content-Type"},
	}}

	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/", http.Header{"Origin": {"https://shop.example.com"}})
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = perform(r, http.MethodGet, "/", http.Header{"Origin": {"https://api.example.org"}})
	assert.Equal(t, "https://api.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/", http.Header{"Origin": {"https://evilexample.org"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodOptions, "/", http.Header{"Origin": {"https://shop.example.com"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	log, _ := test.NewNullLogger()

	r := gin.New()
	r.Use(RateLimit(2, client, log))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/", nil).Code)

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()
	log, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(RateLimit(1, client, log))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		assert.True(t, hasDeadline)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusGatewayTimeout, perform(r, http.MethodGet, "/slow", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/fast", nil).Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(reg)

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/products/abc", nil)
	perform(r, http.MethodGet, "/products/def", nil)
	perform(r, http.MethodGet, "/nowhere", nil)

	expected := `
# HELP storefront_http_requests_total HTTP requests by method, route and status
# TYPE storefront_http_requests_total counter
storefront_http_requests_total{method="GET",route="/products/:id",status="200"} 2
storefront_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "storefront_http_requests_total"))
}
