// migrate 只做建表/加列，不启动 HTTP
package main

import (
	"flag"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"book-catalog-api/internal/core/config"
	"book-catalog-api/internal/core/database"
	"book-catalog-api/internal/core/logger"
	"book-catalog-api/internal/domain"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "config file path")
	dryRun := flag.Bool("dry-run", false, "only check connectivity")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		l, _ := logger.New("info", false)
		l.Fatal("load config", zap.Error(err))
	}
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             logger.GormWriter{L: log},
		OnDSN:              func(m string) { log.Info("database dsn", zap.String("dsn", m)) },
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if *dryRun {
		log.Info("dry run, skip migrate")
		return
	}
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}
	log.Info("automigrate done", zap.Int("models", len(domain.Models())))
}
