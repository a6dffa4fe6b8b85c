package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
)

type fakeAuth map[string]error

func (f fakeAuth) Authenticate(_ context.Context, token string) (application.Viewer, error) {
	if token == "" {
		return application.Viewer{}, apperror.NotAuthenticated("missing access token")
	}
	if err, ok := f[token]; ok {
		return application.Viewer{}, err
	}
	return application.Viewer{UserID: "u-" + token}, nil
}

func whoami(c *gin.Context) {
	c.String(http.StatusOK, ViewerFrom(c).UserID)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := fakeAuth{"expired": apperror.NotAuthenticated("invalid access token")}
	r := gin.New()
	r.GET("/me", Auth(auth), whoami)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "ann"})
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-ann", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bob")
	w = serve(r, req)
	assert.Equal(t, "u-bob", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"not_authenticated"`)
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := fakeAuth{
		"expired": apperror.NotAuthenticated("invalid access token"),
		"down":    apperror.Upstream(nil, "session store unavailable"),
	}
	r := gin.New()
	r.GET("/feed", OptionalAuth(auth), whoami)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/feed", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer down")
	w = serve(r, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"retryable":true`)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.POST("/login", RateLimit(rdb, 2, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		return serve(r, req)
	}
	assert.Equal(t, http.StatusNoContent, hit("203.0.113.7").Code)
	w := hit("203.0.113.7")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = hit("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"kind":"rate_limited"`)

	assert.Equal(t, http.StatusNoContent, hit("198.51.100.2").Code, "other clients have their own window")

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusNoContent, hit("203.0.113.7").Code)
}

func TestRateLimitWithoutRedisIsPassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "trace-12345678")
	w = serve(r, req)
	assert.Equal(t, "trace-12345678", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "bad id with spaces")
	w = serve(r, req)
	assert.NotEqual(t, "bad id with spaces", w.Body.String())
}

func TestRealIPAndPrivateGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RealIP())
	r.GET("/internal", OnlyIf(AllowPrivateIP()), func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/internal", nil)
	req.Header.Set("CF-Connecting-IP", "10.1.2.3")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10.1.2.3", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/internal", nil)
	req.Header.Set("X-Real-IP", "8.8.8.8")
	w = serve(r, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
