// Package app 用 fx 组装依赖并管理进程生命周期
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"book-catalog-api/internal/core/auth"
	"book-catalog-api/internal/core/cache"
	"book-catalog-api/internal/core/config"
	"book-catalog-api/internal/core/database"
	"book-catalog-api/internal/core/logger"
	"book-catalog-api/internal/core/server"
	"book-catalog-api/internal/domain"
	"book-catalog-api/internal/repo"
	"book-catalog-api/internal/service"
	"book-catalog-api/internal/transport/http/handler"
	mdw "book-catalog-api/internal/transport/http/middleware"
	"book-catalog-api/internal/transport/http/router"
	"book-catalog-api/pkg/utils"
)

// ConfigModule 从 YAML + APP_ 环境变量加载配置
var ConfigModule = fx.Provide(func() (*config.Config, error) { return config.Load("") })

// Module 除配置外的全部组件；测试可用 fx.Supply 提供 *config.Config
var Module = fx.Module("book-catalog",
	fx.Provide(
		newLogger,
		newDB,
		newCache,
		newJWT,
		fx.Annotate(repo.NewUserRepo, fx.As(new(domain.UserRepository))),
		fx.Annotate(repo.NewBookRepo, fx.As(new(domain.BookRepository))),
		newUserService,
		newBookService,
		fx.Annotate(newAuthModule, fx.As(new(router.APIModule)), fx.ResultTags(`group:"api"`)),
		fx.Annotate(newBookModule, fx.As(new(router.APIModule)), fx.ResultTags(`group:"api"`)),
		newRegistry,
		newEngine,
		newHTTPServer,
	),
	fx.Invoke(func(*http.Server) {}),
)

// FxLogger fx 自身事件写入 zap
func FxLogger(l *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: l.Named("fx")}
}

func newLogger(lc fx.Lifecycle, cfg *config.Config) *zap.Logger {
	l, cleanup := logger.FromConfig(cfg.Log)
	undo := logger.RedirectStdLog(l, zapcore.InfoLevel)
	lc.Append(fx.StopHook(func() {
		undo()
		cleanup()
	}))
	return l
}

func newDB(lc fx.Lifecycle, cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             logger.GormWriter{L: l},
		OnDSN:              func(m string) { l.Info("database dsn", zap.String("dsn", m)) },
	})
	if err != nil {
		return nil, err
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(domain.Models()...); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		l.Info("automigrate done")
	}
	lc.Append(fx.StopHook(func() error { return database.Close(db) }))
	return db, nil
}

// newCache 未配置 redis.addr 时返回 nil，读书接口直接回源
func newCache(lc fx.Lifecycle, cfg *config.Config, l *zap.Logger) *cache.Cache {
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if !c.Enabled() {
		l.Info("redis cache disabled")
		return nil
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := c.Ping(ctx); err != nil {
				l.Warn("redis ping failed, cache degrades to passthrough", zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error { return c.Close() },
	})
	return c
}

func newJWT(cfg *config.Config) *auth.JWTer {
	return &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
		Leeway: cfg.JWT.Leeway(),
	}
}

func newUserService(cfg *config.Config, users domain.UserRepository, books domain.BookRepository, j *auth.JWTer, l *zap.Logger) *service.UserService {
	return service.NewUserService(users, books, j, utils.PasswordHasher{Cost: cfg.Auth.BcryptCost}, l.Named("user"))
}

func newBookService(cfg *config.Config, books domain.BookRepository, users domain.UserRepository, c *cache.Cache, l *zap.Logger) *service.BookService {
	return service.NewBookService(books, users, c, service.BookOptions{
		CountFiltered: cfg.Books.CountFiltered,
		CacheTTL:      time.Duration(cfg.Books.CacheTTLSec) * time.Second,
	}, l.Named("book"))
}

func newAuthModule(cfg *config.Config, svc *service.UserService, j *auth.JWTer, l *zap.Logger) *handler.AuthModule {
	perIP := mdw.RateLimitPerIP(rate.Limit(cfg.Limits.AuthRPS), cfg.Limits.AuthBurst)
	return handler.NewAuthModule(svc, j, l, perIP)
}

func newBookModule(svc *service.BookService, j *auth.JWTer, l *zap.Logger) *handler.BookModule {
	return handler.NewBookModule(svc, j, l)
}

type registryParams struct {
	fx.In
	Mods []router.APIModule `group:"api"`
}

func newRegistry(p registryParams) *router.Registry {
	return router.NewRegistry(p.Mods...)
}

func newEngine(cfg *config.Config, l *zap.Logger, reg *router.Registry, db *gorm.DB, c *cache.Cache) *gin.Engine {
	switch strings.ToLower(cfg.App.Env) {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	}
	checks := []router.HealthCheck{{
		Name: "db",
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if c.Enabled() {
		checks = append(checks, router.HealthCheck{Name: "redis", Ping: c.Ping})
	}
	return router.NewAPIEngine(cfg, l, reg, checks...)
}

func newHTTPServer(lc fx.Lifecycle, cfg *config.Config, r *gin.Engine, l *zap.Logger) *http.Server {
	srv := server.FromConfig(cfg.App.HTTP, r)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			l.Info("http starting",
				zap.String("addr", ln.Addr().String()),
				zap.String("api_v1", cfg.App.HTTP.BasePath),
			)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					l.Error("http serve failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			l.Info("http stopping")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
