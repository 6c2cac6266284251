package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"book-catalog-api/internal/core/config"
	"book-catalog-api/internal/core/errs"
	"book-catalog-api/internal/core/server"
	mdw "book-catalog-api/internal/transport/http/middleware"
	resp "book-catalog-api/internal/transport/http/response"
)

// HealthCheck /health 依次执行的依赖探活
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

func NewAPIEngine(cfg *config.Config, l *zap.Logger, reg *Registry, checks ...HealthCheck) *gin.Engine {
	r := server.NewRouter(l, cfg.App.HTTP.CORSOrigins, cfg.App.HTTP.TrustedProxies)

	lim := cfg.Limits
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(l),
		mdw.Metrics(),
		mdw.SimpleRecovery(l),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.MaxConcurrent),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.RequestTimeoutSec)*time.Second),
	)

	r.GET("/health", health(checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(cfg.App.HTTP.BasePath)
	reg.MountAll(api)

	r.NoRoute(func(c *gin.Context) {
		resp.Abort(c, errs.NotFound("API Not Found"))
	})
	return r
}

func health(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		status := map[string]string{}
		for _, hc := range checks {
			if err := hc.Ping(ctx); err != nil {
				status[hc.Name] = err.Error()
				c.AbortWithStatusJSON(http.StatusServiceUnavailable,
					resp.New(http.StatusServiceUnavailable, hc.Name+" unavailable", status))
				return
			}
			status[hc.Name] = "ok"
		}
		c.JSON(http.StatusOK, resp.OK("OK", status))
	}
}
