package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"book-catalog-api/internal/core/cache"
	"book-catalog-api/internal/core/errs"
	"book-catalog-api/internal/domain"
)

type CreateBookInput struct {
	Title           string `json:"title" binding:"required,max=255"`
	Genre           string `json:"genre" binding:"required,max=64"`
	Author          string `json:"author"`
	PublicationDate string `json:"publicationDate" binding:"required"`
}

// UpdateBookInput 仅更新非 nil 字段
type UpdateBookInput struct {
	Title           *string `json:"title" binding:"omitempty,min=1,max=255"`
	Genre           *string `json:"genre" binding:"omitempty,min=1,max=64"`
	Author          *string `json:"author" binding:"omitempty,min=1"`
	PublicationDate *string `json:"publicationDate" binding:"omitempty,min=1"`
}

type ReviewInput struct {
	BookID string `json:"bookId" binding:"required"`
	Name   string `json:"name" binding:"omitempty,max=128"`
	Email  string `json:"email" binding:"omitempty,email"`
	Review string `json:"review" binding:"required"`
}

type ListBooksInput struct {
	domain.PageOptions
	domain.BookFilters
}

type BookOptions struct {
	CountFiltered bool
	CacheTTL      time.Duration
}

type BookService struct {
	books domain.BookRepository
	users domain.UserRepository
	cache *cache.Cache
	opts  BookOptions
	log   *zap.Logger
}

func NewBookService(books domain.BookRepository, users domain.UserRepository, c *cache.Cache, opts BookOptions, log *zap.Logger) *BookService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	return &BookService{books: books, users: users, cache: c, opts: opts, log: log}
}

func bookKey(id string) string { return "book:" + id }

// parseDate 接受 YYYY-MM-DD 或 RFC3339
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errs.Validation("Validation Error", []errs.FieldError{
		{Path: "publicationDate", Message: "publicationDate must be YYYY-MM-DD or RFC3339"},
	})
}

// blankErr 去空白后为空的必填字段报 400
func blankErr(fields map[string]string) error {
	var details []errs.FieldError
	for _, path := range []string{"title", "genre", "review"} {
		if v, ok := fields[path]; ok && v == "" {
			details = append(details, errs.FieldError{Path: path, Message: path + " must not be blank"})
		}
	}
	if len(details) == 0 {
		return nil
	}
	return errs.Validation("Validation Error", details)
}

func (s *BookService) mustUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.NotFound("User does not exist")
	}
	return u, nil
}

func (s *BookService) mustBook(ctx context.Context, id string) (*domain.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errs.NotFound("Book does not exist")
	}
	return b, nil
}

func authorErr(err error) error {
	if errs.CodeOf(err) == http.StatusNotFound {
		return errs.NotFound("Author does not exist")
	}
	return err
}

func (s *BookService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, bookKey(id)); err != nil {
		s.log.Warn("book cache invalidate failed", zap.String("book_id", id), zap.Error(err))
	}
}

func (s *BookService) Create(ctx context.Context, userID string, in CreateBookInput) (*domain.Book, error) {
	title, genre := strings.TrimSpace(in.Title), strings.TrimSpace(in.Genre)
	if err := blankErr(map[string]string{"title": title, "genre": genre}); err != nil {
		return nil, err
	}
	u, err := s.mustUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	authorID := u.ID
	if a := strings.TrimSpace(in.Author); a != "" && a != u.ID {
		if _, err := s.mustUser(ctx, a); err != nil {
			return nil, authorErr(err)
		}
		authorID = a
	}
	pub, err := parseDate(in.PublicationDate)
	if err != nil {
		return nil, err
	}
	b := &domain.Book{
		Title:           title,
		Genre:           genre,
		AuthorID:        authorID,
		PublicationDate: pub,
	}
	if err := s.books.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("book created", zap.String("book_id", b.ID), zap.String("user_id", u.ID))
	return s.mustBook(ctx, b.ID)
}

func (s *BookService) List(ctx context.Context, in ListBooksInput) (*domain.BookPage, error) {
	p, err := in.PageOptions.Normalize()
	if err != nil {
		return nil, err
	}
	return s.books.List(ctx, domain.BookQuery{
		Page:          p,
		Filters:       in.BookFilters,
		CountFiltered: s.opts.CountFiltered,
	})
}

// Get 读穿缓存；不存在时返回 NotFound 且不写缓存
func (s *BookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	b, err := cache.GetOrLoadJSON(s.cache, ctx, bookKey(id), s.opts.CacheTTL, func(ctx context.Context) (*domain.Book, error) {
		return s.mustBook(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errs.NotFound("Book does not exist")
	}
	return b, nil
}

func (s *BookService) Update(ctx context.Context, userID, id string, in UpdateBookInput) (*domain.Book, error) {
	var ch domain.BookChanges
	text := map[string]string{}
	if in.Title != nil {
		v := strings.TrimSpace(*in.Title)
		ch.Title, text["title"] = &v, v
	}
	if in.Genre != nil {
		v := strings.TrimSpace(*in.Genre)
		ch.Genre, text["genre"] = &v, v
	}
	if err := blankErr(text); err != nil {
		return nil, err
	}

	if _, err := s.mustUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.mustBook(ctx, id); err != nil {
		return nil, err
	}

	if in.Author != nil {
		if _, err := s.mustUser(ctx, *in.Author); err != nil {
			return nil, authorErr(err)
		}
		ch.AuthorID = in.Author
	}
	if in.PublicationDate != nil {
		t, err := parseDate(*in.PublicationDate)
		if err != nil {
			return nil, err
		}
		ch.PublicationDate = &t
	}

	if err := s.books.Update(ctx, id, ch); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return s.mustBook(ctx, id)
}

// Delete 只有作者本人能删除；未命中返回 (nil, nil)
func (s *BookService) Delete(ctx context.Context, userID, id string) (*domain.Book, error) {
	u, err := s.mustUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.books.DeleteByAuthor(ctx, id, u.ID)
	if err != nil {
		return nil, err
	}
	if b != nil {
		s.invalidate(ctx, id)
		s.log.Info("book deleted", zap.String("book_id", id), zap.String("user_id", u.ID))
	}
	return b, nil
}

func (s *BookService) AddReview(ctx context.Context, userID string, in ReviewInput) (*domain.Book, error) {
	review := strings.TrimSpace(in.Review)
	if err := blankErr(map[string]string{"review": review}); err != nil {
		return nil, err
	}
	u, err := s.mustUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.mustBook(ctx, in.BookID); err != nil {
		return nil, err
	}
	rv := &domain.Review{
		BookID: in.BookID,
		Name:   strings.TrimSpace(in.Name),
		Email:  normalizeEmail(in.Email),
		Review: review,
	}
	if rv.Name == "" {
		rv.Name = u.Name
	}
	if rv.Email == "" {
		rv.Email = u.Email
	}
	if err := s.books.AddReview(ctx, rv); err != nil {
		return nil, err
	}
	s.invalidate(ctx, in.BookID)
	return s.mustBook(ctx, in.BookID)
}

func (s *BookService) RemoveReview(ctx context.Context, reviewID string) (*domain.Book, error) {
	rv, err := s.books.FindReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, errs.NotFound("Review does not exist")
	}
	ok, err := s.books.DeleteReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound("Review does not exist")
	}
	s.invalidate(ctx, rv.BookID)
	return s.mustBook(ctx, rv.BookID)
}
