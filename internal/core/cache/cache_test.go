package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func TestNew_EmptyAddrDisables(t *testing.T) {
	c := New("", "", 0)
	assert.Nil(t, c)
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.Delete(context.Background(), "a"))
	assert.NoError(t, c.Close())
}

func TestGetOrLoadJSON_NilCachePassthrough(t *testing.T) {
	var c *Cache
	calls := 0
	load := func(context.Context) (*item, error) {
		calls++
		return &item{Name: "dune"}, nil
	}
	for i := 0; i < 2; i++ {
		got, err := GetOrLoadJSON(c, context.Background(), "book:1", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "dune", got.Name)
	}
	assert.Equal(t, 2, calls)
}

func TestGetOrLoadJSON_LoadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := GetOrLoadJSON(nil, context.Background(), "k", time.Minute, func(context.Context) (*item, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

// Redis 不可达时降级为直接回源
func TestGetOrLoadJSON_RedisDownFallsBack(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := GetOrLoadJSON(c, ctx, "book:1", time.Minute, func(context.Context) (*item, error) {
		return &item{Name: "dune"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "dune", got.Name)
}

// 回源期间发生失效时，旧值不回写
func TestStoreIfCurrent_SkipsAfterDelete(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	t.Cleanup(func() { _ = c.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	g := c.gen.Load()
	_ = c.Delete(ctx, "book:1")
	assert.False(t, c.storeIfCurrent(ctx, "book:1", []byte(`{"name":"old"}`), time.Minute, g))
	assert.True(t, c.storeIfCurrent(ctx, "book:1", []byte(`{"name":"new"}`), time.Minute, c.gen.Load()))

	got, err := GetOrLoadJSON(c, ctx, "book:1", time.Minute, func(ctx context.Context) (*item, error) {
		_ = c.Delete(ctx, "book:1")
		return &item{Name: "dune"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "dune", got.Name)
	assert.Equal(t, g+2, c.gen.Load())
}
