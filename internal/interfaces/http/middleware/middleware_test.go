package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	redisdb "github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:             "middleware-test-secret-0123456789abcdef",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"https://shop.example.com", "*.preview.example.com"},
			CORSAllowedMethods: []string{"GET", "POST"},
			CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		Session: config.SessionConfig{CookieName: "sid", TTL: time.Hour},
	}
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/", func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":    userID,
			"session_id": GetSessionIDFromContext(c),
		})
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS(testConfig()))

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"exact origin", "https://shop.example.com", true},
		{"wildcard subdomain", "https://pr-12.preview.example.com", true},
		{"unknown origin", "https://evil.test", false},
		{"no origin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := serve(r, req)

			if tt.allowed {
				assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := serve(r, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestSession(t *testing.T) {
	r := newRouter(Session(testConfig()))

	t.Run("issues a cookie", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "sid", cookies[0].Name)
		assert.NoError(t, uuid.Validate(cookies[0].Value))
		assert.Contains(t, rec.Body.String(), cookies[0].Value)
	})

	t.Run("keeps a valid cookie", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: id})
		rec := serve(r, req)

		assert.Contains(t, rec.Body.String(), id)
	})

	t.Run("replaces a forged cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc"})
		rec := serve(r, req)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.NotEqual(t, "../../etc", cookies[0].Value)
	})
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	token, err := auth.NewJWTManager(cfg).GenerateAccessToken("u1", "jane@example.com", "Jane Doe")
	require.NoError(t, err)

	strict := newRouter(AuthMiddleware(cfg))
	optional := newRouter(OptionalAuthMiddleware(cfg))

	t.Run("missing header", func(t *testing.T) {
		rec := serve(strict, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		assert.Equal(t, http.StatusUnauthorized, serve(strict, req).Code)
		assert.Equal(t, http.StatusOK, serve(optional, req).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := serve(strict, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"user_id":"u1"`)
	})

	t.Run("anonymous passes optional", func(t *testing.T) {
		rec := serve(optional, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"user_id":""`)
	})
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisdb.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	r := newRouter(RateLimit(2, client, logger.Discard()))

	for i := 0; i < 2; i++ {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")

	t.Run("fails open without redis", func(t *testing.T) {
		mr.Close()
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusGatewayTimeout, serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec := serve(newRouter(SecurityHeaders()), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
