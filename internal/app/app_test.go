package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"golang.org/x/crypto/bcrypt"

	"book-catalog-api/internal/core/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.HTTP = config.HTTP{Host: "127.0.0.1", Port: 0, BasePath: "/api/v1", ReadTimeoutSec: 5, WriteTimeoutSec: 5, IdleTimeoutSec: 5}
	cfg.Log = config.Log{Level: "error"}
	cfg.JWT = config.JWT{Secret: "app-secret", Issuer: "test", AccessTokenTTLMin: 60}
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.DB = config.DB{
		Driver:       "sqlite",
		DSN:          "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		AutoMigrate:  true,
		LogLevel:     "silent",
	}
	cfg.Limits = config.Limits{RPS: 100, Burst: 100, AuthRPS: 100, AuthBurst: 100, MaxConcurrent: 10, MaxBodyBytes: 1 << 20, RequestTimeoutSec: 5}
	cfg.Books.CacheTTLSec = 60
	return cfg
}

func TestModule_Validate(t *testing.T) {
	require.NoError(t, fx.ValidateApp(ConfigModule, Module, fx.NopLogger))
}

func TestModule_StartStop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var engine *gin.Engine
	app := fxtest.New(t,
		fx.Supply(testConfig(t)),
		Module,
		fx.WithLogger(FxLogger),
		fx.Populate(&engine),
	)
	app.RequireStart()
	defer app.RequireStop()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	body := `{"name":"Ann","email":"ann@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	raw, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotEmpty(t, out.Data.AccessToken)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/get-user", nil)
	req.Header.Set("Authorization", "Bearer "+out.Data.AccessToken)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
