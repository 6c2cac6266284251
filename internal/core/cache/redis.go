package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache Redis 读穿缓存；nil *Cache 直接回源
type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
	// gen 每次 Delete 递增；回源期间发生过失效则不回写，避免旧值覆盖
	gen atomic.Uint64
}

// New addr 为空时返回 nil，表示不启用缓存
func New(addr, pass string, db int) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		RDB: redis.NewClient(&redis.Options{
			Addr:        addr,
			Password:    pass,
			DB:          db,
			DialTimeout: 2 * time.Second,
		}),
	}
}

func (c *Cache) Enabled() bool { return c != nil && c.RDB != nil }

func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.RDB.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.RDB.Close()
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if !c.Enabled() {
		return load(ctx)
	}
	// 先读缓存；Redis 异常时降级为回源
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	// single flight 合并回源
	v, err, _ := c.sf.Do(key, func() (any, error) {
		g := c.gen.Load()
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		c.storeIfCurrent(ctx, key, b, ttl, g)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// storeIfCurrent 仅在回源开始后没有失效发生时写入
func (c *Cache) storeIfCurrent(ctx context.Context, key string, b []byte, ttl time.Duration, g uint64) bool {
	if c.gen.Load() != g {
		return false
	}
	_ = c.RDB.Set(ctx, key, b, ttl).Err()
	return true
}

// Delete 失效若干 key；同时丢弃进行中的回源，后续读取重新加载
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	c.gen.Add(1)
	for _, k := range keys {
		c.sf.Forget(k)
	}
	return c.RDB.Del(ctx, keys...).Err()
}
