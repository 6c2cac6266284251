package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"book-catalog-api/internal/core/config"
)

// NewRouter 基础引擎：zap 兜底 recovery + CORS；origins 为空时放开所有来源。
// proxies 为空时不信任 X-Forwarded-For，ClientIP 取 RemoteAddr
func NewRouter(l *zap.Logger, origins, proxies []string) *gin.Engine {
	r := gin.New()
	if len(proxies) == 0 {
		proxies = nil
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		l.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", proxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(ginzap.RecoveryWithZap(l, true))
	r.Use(cors.New(corsConfig(origins)))
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	c.AddAllowHeaders("Authorization", "X-Request-ID")
	c.ExposeHeaders = []string{"X-Request-ID"}
	c.MaxAge = 12 * time.Hour
	return c
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    1 << 20, // 1MB
	}
}

// FromConfig 按 app.http 构造 http.Server
func FromConfig(h config.HTTP, handler http.Handler) *http.Server {
	sec := func(n int) time.Duration { return time.Duration(n) * time.Second }
	return BuildServer(Addr(h.Host, h.Port), handler, sec(h.ReadTimeoutSec), sec(h.WriteTimeoutSec), sec(h.IdleTimeoutSec))
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
