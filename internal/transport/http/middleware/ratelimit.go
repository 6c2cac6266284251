package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"book-catalog-api/internal/core/errs"
	resp "book-catalog-api/internal/transport/http/response"
)

func tooMany(c *gin.Context) {
	resp.Abort(c, errs.New(resp.CodeTooManyRequests, "too many requests"))
}

// RateLimit 全局令牌桶限速；rps<=0 不限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		tooMany(c)
	}
}

// ipIdleTTL 空闲超过该时长的 IP 桶会被回收
const ipIdleTTL = 10 * time.Minute

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipLimiters 按 IP 分桶，定期清理空闲桶
type ipLimiters struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	buckets   map[string]*ipBucket
	lastSweep time.Time
}

func newIPLimiters(rps rate.Limit, burst int, idle time.Duration) *ipLimiters {
	return &ipLimiters{rps: rps, burst: burst, idle: idle, now: time.Now, buckets: make(map[string]*ipBucket)}
}

func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) >= l.idle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	l.mu.Unlock()
	return b.lim.AllowN(now, 1)
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimitPerIP 每 IP 限速；IP 取 c.ClientIP()，代理头是否可信由引擎的 TrustedProxies 决定
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return perIP(newIPLimiters(rps, burst, ipIdleTTL))
}

func perIP(l *ipLimiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.allow(c.ClientIP()) {
			c.Next()
			return
		}
		tooMany(c)
	}
}
