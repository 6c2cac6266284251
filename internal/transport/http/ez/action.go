package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"book-catalog-api/internal/core/errs"
	mdw "book-catalog-api/internal/transport/http/middleware"
	resp "book-catalog-api/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	useWireFieldNames()
	return EZ{g: g, log: l}
}

// Group 子分组，可附带中间件（如鉴权）
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), log: e.log}
}

// Pager 出参实现该接口时输出 meta
type Pager interface {
	PageMeta() resp.Meta
	PageItems() any
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method     string // "GET" | "POST" | "PATCH" | "DELETE"
	Path       string // 例："/signup"、"/:id"
	Binder     Binder
	Message    string            // 成功时的 message
	Middleware []gin.HandlerFunc // 仅作用于该动作
	Handler    func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			resp.Abort(c, BindError(bindErr))
			return
		}

		// 2) 执行
		out, err := a.Handler(c, &in)

		// 3) 统一错误映射
		if err != nil {
			if ae := errs.From(err); ae.Code >= http.StatusInternalServerError {
				e.log.Error("action failed",
					zap.String("rid", c.GetString(mdw.CtxRequestID)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.FullPath()),
					zap.Error(err),
				)
			}
			resp.Abort(c, err)
			return
		}
		if p, ok := any(out).(Pager); ok {
			c.JSON(http.StatusOK, resp.WithMeta(a.Message, p.PageMeta(), p.PageItems()))
			return
		}
		c.JSON(http.StatusOK, resp.OK(a.Message, out))
	}

	method := strings.ToUpper(a.Method)
	if method == "" {
		method = http.MethodPost
	}
	handlers := make([]gin.HandlerFunc, 0, len(a.Middleware)+1)
	handlers = append(handlers, a.Middleware...)
	handlers = append(handlers, h)
	e.g.Handle(method, a.Path, handlers...)
}

// BindError 把 gin/validator 的绑定错误转为 400（超限为 413）
func BindError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return errs.New(http.StatusRequestEntityTooLarge, "request body too large")
	}
	if details := fieldErrors(err); len(details) > 0 {
		return errs.Validation("Validation Error", details)
	}
	return errs.BadRequest("Invalid request: " + err.Error())
}
