// Package testutil 提供测试用的内存 SQLite
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"book-catalog-api/internal/core/database"
	"book-catalog-api/internal/domain"
)

var seq atomic.Int64

// NewDB 每次调用得到一个独立的已迁移内存库，测试结束自动关闭
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Models()...))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
