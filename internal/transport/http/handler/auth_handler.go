package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"book-catalog-api/internal/core/auth"
	"book-catalog-api/internal/domain"
	"book-catalog-api/internal/service"
	"book-catalog-api/internal/transport/http/ez"
	mdw "book-catalog-api/internal/transport/http/middleware"
)

// AuthModule 挂载 /auth：注册、登录、个人资料和三个书单
type AuthModule struct {
	svc   *service.UserService
	jwt   *auth.JWTer
	log   *zap.Logger
	limit gin.HandlerFunc // signup/login 的每 IP 限速，可为 nil
}

func NewAuthModule(svc *service.UserService, j *auth.JWTer, l *zap.Logger, limit gin.HandlerFunc) *AuthModule {
	return &AuthModule{svc: svc, jwt: j, log: l, limit: limit}
}

func (m *AuthModule) Priority() int { return 10 }

func (m *AuthModule) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/auth"), m.log)

	var public []gin.HandlerFunc
	if m.limit != nil {
		public = append(public, m.limit)
	}

	ez.RegisterAction(e, ez.Action[service.SignupInput, *service.TokenOut]{
		Method:     http.MethodPost,
		Path:       "/signup",
		Binder:     ez.BindJSON,
		Message:    "User created successfully!",
		Middleware: public,
		Handler: func(c *gin.Context, in *service.SignupInput) (*service.TokenOut, error) {
			return m.svc.Signup(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[service.LoginInput, *service.TokenOut]{
		Method:     http.MethodPost,
		Path:       "/login",
		Binder:     ez.BindJSON,
		Message:    "User logged successfully!",
		Middleware: public,
		Handler: func(c *gin.Context, in *service.LoginInput) (*service.TokenOut, error) {
			return m.svc.Login(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[none, *domain.Profile]{
		Method:     http.MethodGet,
		Path:       "/get-user",
		Binder:     ez.BindNone,
		Message:    "User get successfully!",
		Middleware: []gin.HandlerFunc{mdw.AuthJWT(m.jwt, string(domain.RoleUser))},
		Handler: func(c *gin.Context, _ *none) (*domain.Profile, error) {
			uid, err := callerID(c)
			if err != nil {
				return nil, err
			}
			return m.svc.Profile(c.Request.Context(), uid)
		},
	})

	authed := e.Group("", mdw.AuthJWT(m.jwt))
	for _, list := range []domain.ListKind{domain.ListWish, domain.ListReadSoon, domain.ListCompleted} {
		m.mountList(authed, list)
	}
}

func (m *AuthModule) mountList(e ez.EZ, list domain.ListKind) {
	ez.RegisterAction(e, ez.Action[service.ListInput, *domain.Profile]{
		Method:  http.MethodPost,
		Path:    "/" + string(list),
		Binder:  ez.BindJSON,
		Message: "Add " + list.Label() + " Book successfully!",
		Handler: func(c *gin.Context, in *service.ListInput) (*domain.Profile, error) {
			uid, err := callerID(c)
			if err != nil {
				return nil, err
			}
			return m.svc.AddToList(c.Request.Context(), list, uid, in.BookID)
		},
	})

	ez.RegisterAction(e, ez.Action[none, *domain.Profile]{
		Method:  http.MethodDelete,
		Path:    "/" + string(list) + "/:id",
		Binder:  ez.BindNone,
		Message: list.Label() + " Book deleted successfully!",
		Handler: func(c *gin.Context, _ *none) (*domain.Profile, error) {
			uid, err := callerID(c)
			if err != nil {
				return nil, err
			}
			return m.svc.RemoveFromList(c.Request.Context(), list, uid, c.Param("id"))
		},
	})
}
