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
	resp "book-catalog-api/internal/transport/http/response"
)

// bookPage 列表出参，输出 meta
type bookPage struct{ p *domain.BookPage }

func (b bookPage) PageMeta() resp.Meta {
	return resp.Meta{Page: b.p.Page, Limit: b.p.Limit, Count: b.p.Count}
}

func (b bookPage) PageItems() any { return b.p.Items }

// BookModule 挂载 /books
type BookModule struct {
	svc *service.BookService
	jwt *auth.JWTer
	log *zap.Logger
}

func NewBookModule(svc *service.BookService, j *auth.JWTer, l *zap.Logger) *BookModule {
	return &BookModule{svc: svc, jwt: j, log: l}
}

func (m *BookModule) Priority() int { return 20 }

func (m *BookModule) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/books"), m.log)
	authed := e.Group("", mdw.AuthJWT(m.jwt))

	ez.RegisterAction(e, ez.Action[service.ListBooksInput, bookPage]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  ez.BindQuery,
		Message: "Books retrieved successfully!",
		Handler: func(c *gin.Context, in *service.ListBooksInput) (bookPage, error) {
			p, err := m.svc.List(c.Request.Context(), *in)
			if err != nil {
				return bookPage{}, err
			}
			return bookPage{p: p}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[none, *domain.Book]{
		Method:  http.MethodGet,
		Path:    "/:id",
		Binder:  ez.BindNone,
		Message: "Book retrieved successfully!",
		Handler: func(c *gin.Context, _ *none) (*domain.Book, error) {
			return m.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(authed, ez.Action[service.CreateBookInput, *domain.Book]{
		Method:  http.MethodPost,
		Path:    "",
		Binder:  ez.BindJSON,
		Message: "Book created successfully!",
		Handler: func(c *gin.Context, in *service.CreateBookInput) (*domain.Book, error) {
			uid, err := callerID(c)
			if err != nil {
				return nil, err
			}
			return m.svc.Create(c.Request.Context(), uid, *in)
		},
	})

	ez.RegisterAction(authed, ez.Action[service.UpdateBookInput, *domain.Book]{
		Method:  http.MethodPatch,
		Path:    "/:id",
		Binder:  ez.BindJSON,
		Message: "Book updated successfully!",
		Handler: func(c *gin.Context, in *service.UpdateBookInput) (*domain.Book, error) {
			uid, err := callerID(c)
			if err != nil {
				return nil, err
			}
			return m.svc.Update(c.Request.Context(), uid, c.Param("id"), *in)
		},
	})

	ez.RegisterAction(authed, ez.Action[none, *domain.Book]{
		Method:  http.MethodDelete,
		Path:    "/:id",
		Binder:  ez.BindNone,
		Message: "Book deleted successfully!",
		Handler: func(c *gin.Context, _ *none) (*domain.Book, error) {
			uid, err := callerID(c)
			if err != nil {
				return nil, err
			}
			return m.svc.Delete(c.Request.Context(), uid, c.Param("id"))
		},
	})

	ez.RegisterAction(authed, ez.Action[service.ReviewInput, *domain.Book]{
		Method:  http.MethodPost,
		Path:    "/reviews",
		Binder:  ez.BindJSON,
		Message: "Book reviewed successfully!",
		Handler: func(c *gin.Context, in *service.ReviewInput) (*domain.Book, error) {
			uid, err := callerID(c)
			if err != nil {
				return nil, err
			}
			return m.svc.AddReview(c.Request.Context(), uid, *in)
		},
	})

	ez.RegisterAction(authed, ez.Action[none, *domain.Book]{
		Method:  http.MethodDelete,
		Path:    "/reviews/:id",
		Binder:  ez.BindNone,
		Message: "Book review deleted successfully!",
		Handler: func(c *gin.Context, _ *none) (*domain.Book, error) {
			return m.svc.RemoveReview(c.Request.Context(), c.Param("id"))
		},
	})
}
