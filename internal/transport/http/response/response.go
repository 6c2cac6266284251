package response

import (
	"github.com/gin-gonic/gin"

	"book-catalog-api/internal/core/errs"
)

type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Count int64 `json:"count"`
}

// Resp 统一响应信封；statusCode 与 HTTP 状态码一致
type Resp struct {
	StatusCode    int               `json:"statusCode"`
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Meta          *Meta             `json:"meta,omitempty"`
	Data          any               `json:"data"`
	ErrorMessages []errs.FieldError `json:"errorMessages,omitempty"`
}

// New 构造函数；data 为 nil 时输出 null
func New(code int, msg string, data any) Resp {
	if msg == "" {
		msg = msgOf(code)
	}
	return Resp{StatusCode: code, Success: code < 400, Message: msg, Data: data}
}

// OK 成功响应
func OK(msg string, data any) Resp {
	return New(CodeOK, msg, data)
}

// WithMeta 分页响应
func WithMeta(msg string, meta Meta, data any) Resp {
	r := New(CodeOK, msg, data)
	r.Meta = &meta
	return r
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	r := New(code, customMsg, nil)
	r.ErrorMessages = []errs.FieldError{{Path: "", Message: r.Message}}
	return r
}

// FromError 按 errs.Error 渲染；5xx 不暴露内部信息
func FromError(err error) Resp {
	e := errs.From(err)
	msg := e.Error()
	if e.Code >= 500 {
		msg = msgOf(e.Code)
	}
	r := Error(e.Code, msg)
	if len(e.Details) > 0 {
		r.ErrorMessages = e.Details
	}
	return r
}

// Abort 终止请求并输出错误信封
func Abort(c *gin.Context, err error) {
	r := FromError(err)
	c.AbortWithStatusJSON(r.StatusCode, r)
}
