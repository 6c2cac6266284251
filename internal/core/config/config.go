package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type HTTP struct {
	Host            string
	Port            int
	BasePath        string
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	CORSOrigins     []string
	TrustedProxies  []string // 为空时不信任任何代理头，ClientIP 取 RemoteAddr
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

// LogFile 文件切割（Filename 为空则只写 stdout）
type LogFile struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	LeewaySec         int
}

func (j JWT) TTL() time.Duration    { return time.Duration(j.AccessTokenTTLMin) * time.Minute }
func (j JWT) Leeway() time.Duration { return time.Duration(j.LeewaySec) * time.Second }

type Auth struct {
	BcryptCost int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Limits 入口保护
type Limits struct {
	RPS               float64
	Burst             int
	AuthRPS           float64 // /auth/signup、/auth/login 每 IP 限速
	AuthBurst         int
	MaxConcurrent     int64
	MaxBodyBytes      int64
	RequestTimeoutSec int
}

type Books struct {
	CountFiltered bool // false：meta.count 返回全表数量
	CacheTTLSec   int
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	Auth   Auth
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Limits Limits
	Books  Books
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "book-catalog-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.basePath", "/api/v1")
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.corsOrigins", []string{})
	v.SetDefault("app.http.trustedProxies", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.filename", "")
	v.SetDefault("log.file.maxSizeMB", 20)
	v.SetDefault("log.file.maxBackups", 14)
	v.SetDefault("log.file.maxAgeDays", 14)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "book-catalog-api")
	v.SetDefault("jwt.accessTokenTTLMin", 24*60)
	v.SetDefault("jwt.leewaySec", 0)

	v.SetDefault("auth.bcryptCost", bcrypt.DefaultCost)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.authRPS", 5)
	v.SetDefault("limits.authBurst", 10)
	v.SetDefault("limits.maxConcurrent", 300)
	v.SetDefault("limits.maxBodyBytes", 1<<20)
	v.SetDefault("limits.requestTimeoutSec", 10)

	v.SetDefault("books.countFiltered", false)
	v.SetDefault("books.cacheTTLSec", 60)
}

// Load 读取 YAML（可选）+ APP_ 前缀环境变量，例如 APP_JWT_SECRET、APP_AUTH_BCRYPTCOST
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 配置文件不存在时只用默认值 + 环境变量
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		errs = append(errs, errors.New("jwt.accessTokenTTLMin must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth.bcryptCost must be in [%d,%d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.App.HTTP.Port <= 0 {
		errs = append(errs, errors.New("app.http.port must be positive"))
	}
	for _, p := range c.App.HTTP.TrustedProxies {
		if !validProxy(p) {
			errs = append(errs, fmt.Errorf("app.http.trustedProxies: %q is not an IP or CIDR", p))
		}
	}
	return errors.Join(errs...)
}

func validProxy(s string) bool {
	if net.ParseIP(s) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(s)
	return err == nil
}
