package errs

import (
	"errors"
	"net/http"
)

// Error 统一错误对象：Code 直接使用 HTTP 状态码
type Error struct {
	Code    int
	Msg     string
	Err     error
	Details []FieldError
}

// FieldError 单个字段的校验错误
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code int, msg string) error { return &Error{Code: code, Msg: msg} }

func BadRequest(msg string) error   { return &Error{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &Error{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &Error{Code: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) error     { return &Error{Code: http.StatusConflict, Msg: msg} }

func Validation(msg string, details []FieldError) error {
	return &Error{Code: http.StatusBadRequest, Msg: msg, Details: details}
}

func Internal(msg string, err error) error {
	return &Error{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// From 将任意 error 归一为 *Error；未知错误一律 500
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: http.StatusInternalServerError, Msg: http.StatusText(http.StatusInternalServerError), Err: err}
}

// CodeOf 返回 err 对应的状态码，nil 返回 200
func CodeOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return From(err).Code
}
