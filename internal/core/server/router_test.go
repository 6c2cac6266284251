package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"book-catalog-api/internal/core/config"
)

func TestAddrAndFromConfig(t *testing.T) {
	assert.Equal(t, "0.0.0.0:5000", Addr("0.0.0.0", 5000))

	srv := FromConfig(config.HTTP{Host: "127.0.0.1", Port: 8080, ReadTimeoutSec: 5, WriteTimeoutSec: 10, IdleTimeoutSec: 60}, http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:8080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 10*time.Second, srv.WriteTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)
}

func TestNewRouter_CORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(zap.NewNop(), []string{"https://books.example.com"}, nil)
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://books.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://books.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNewRouter_RecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(zap.NewNop(), nil, nil)
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNewRouter_TrustedProxies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clientIP := func(r *gin.Engine, xff string) string {
		var ip string
		r.GET("/ip", func(c *gin.Context) { ip = c.ClientIP() })
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		req.RemoteAddr = "10.1.2.3:4567"
		req.Header.Set("X-Forwarded-For", xff)
		r.ServeHTTP(httptest.NewRecorder(), req)
		return ip
	}

	assert.Equal(t, "10.1.2.3", clientIP(NewRouter(zap.NewNop(), nil, nil), "203.0.113.9"))
	assert.Equal(t, "203.0.113.9", clientIP(NewRouter(zap.NewNop(), nil, []string{"10.0.0.0/8"}), "203.0.113.9"))
	assert.Equal(t, "10.1.2.3", clientIP(NewRouter(zap.NewNop(), nil, []string{"bogus"}), "203.0.113.9"))
}
