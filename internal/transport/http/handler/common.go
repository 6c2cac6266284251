package handler

import (
	"github.com/gin-gonic/gin"

	"book-catalog-api/internal/core/errs"
	mdw "book-catalog-api/internal/transport/http/middleware"
)

// none 无入参动作
type none struct{}

// callerID 取当前登录用户 ID；路由未挂 AuthJWT 时返回 401
func callerID(c *gin.Context) (string, error) {
	cl, ok := mdw.ClaimsFrom(c)
	if !ok || cl.UserID == "" {
		return "", errs.Unauthorized("You are not authorized")
	}
	return cl.UserID, nil
}
