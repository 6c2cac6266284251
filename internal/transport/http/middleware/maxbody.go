package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"book-catalog-api/internal/core/errs"
	resp "book-catalog-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；声明长度超限直接 413，其余在读取时截断
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > n {
			resp.Abort(c, errs.New(resp.CodeTooLarge, "request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
