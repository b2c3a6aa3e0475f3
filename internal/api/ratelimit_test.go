package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobconnect/jobboard-api/internal/auth"
	"github.com/jobconnect/jobboard-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_PerClientBucket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := newRateLimiter(0.001, 2)

	r := gin.New()
	r.GET("/limited", limiter.middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))

	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000"), "other clients keep their own bucket")
	assert.Len(t, limiter.clients, 2)
}

func TestRouter_ForwardedForCountsOnlyFromTrustedProxies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer("test-secret", time.Minute)

	signIn := func(r *gin.Engine, forwardedFor string) int {
		// malformed JSON is rejected after the limiter, before any service is called
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in", strings.NewReader("{"))
		req.RemoteAddr = "10.0.0.1:1000"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	direct, err := NewRouter(config.ServerConfig{AuthRateLimit: 0.001, AuthRateBurst: 2}, issuer, Services{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, signIn(direct, "1.1.1.1"))
	assert.Equal(t, http.StatusBadRequest, signIn(direct, "2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, signIn(direct, "3.3.3.3"), "spoofed header must not open a new bucket")

	proxied, err := NewRouter(config.ServerConfig{
		AuthRateLimit: 0.001, AuthRateBurst: 2, TrustedProxies: []string{"10.0.0.0/8"},
	}, issuer, Services{})
	require.NoError(t, err)
	for _, client := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		assert.Equal(t, http.StatusBadRequest, signIn(proxied, client), client)
	}

	_, err = NewRouter(config.ServerConfig{TrustedProxies: []string{"not-an-ip"}}, issuer, Services{})
	assert.Error(t, err)
}
