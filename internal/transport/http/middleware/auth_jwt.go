package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"book-catalog-api/internal/core/auth"
	"book-catalog-api/internal/core/errs"
	resp "book-catalog-api/internal/transport/http/response"
)

const (
	CtxClaims = "claims"
	CtxUserID = "userId"
	CtxRole   = "role"
)

func bearerToken(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// AuthJWT 校验 Bearer 令牌；roles 非空时要求角色在列表内
func AuthJWT(j *auth.JWTer, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			authRejected.WithLabelValues("missing").Inc()
			resp.Abort(c, errs.Unauthorized("You are not authorized"))
			return
		}
		claims, err := j.Verify(tok)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				authRejected.WithLabelValues("expired").Inc()
				resp.Abort(c, errs.Unauthorized("Token expired"))
				return
			}
			authRejected.WithLabelValues("invalid").Inc()
			resp.Abort(c, errs.Unauthorized("Invalid token"))
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
			authRejected.WithLabelValues("forbidden").Inc()
			resp.Abort(c, errs.Forbidden("Forbidden"))
			return
		}

		c.Set(CtxClaims, claims)
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// ClaimsFrom 取出 AuthJWT 写入的身份
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*auth.Claims)
	return cl, ok && cl != nil
}
