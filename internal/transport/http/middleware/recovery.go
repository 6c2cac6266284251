package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"book-catalog-api/internal/core/errs"
	resp "book-catalog-api/internal/transport/http/response"
)

// SimpleRecovery panic 时记录堆栈并返回 500 信封
func SimpleRecovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.String("rid", c.GetString(CtxRequestID)),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				resp.Abort(c, errs.Internal("internal error", nil))
			}
		}()
		c.Next()
	}
}
