package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"book-catalog-api/internal/core/auth"
	"book-catalog-api/internal/core/errs"
	"book-catalog-api/internal/domain"
	"book-catalog-api/internal/repo"
	"book-catalog-api/pkg/utils"
)

// TokenIssuer 签发访问令牌
type TokenIssuer interface {
	Issue(c auth.Claims) (string, error)
}

type SignupInput struct {
	Name     string `json:"name" binding:"required,max=128"`
	Email    string `json:"email" binding:"required,email,max=191"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role" binding:"omitempty"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ListInput struct {
	BookID string `json:"bookId" binding:"required"`
}

type TokenOut struct {
	AccessToken string `json:"accessToken"`
}

type UserService struct {
	users  domain.UserRepository
	books  domain.BookRepository
	tokens TokenIssuer
	hasher utils.PasswordHasher
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, books domain.BookRepository, tokens TokenIssuer, hasher utils.PasswordHasher, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, books: books, tokens: tokens, hasher: hasher, log: log}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// bcrypt 按字节截断上限，binding 的 max 按字符计
const maxPasswordBytes = 72

func passwordTooLong() error {
	return errs.Validation("Validation Error", []errs.FieldError{
		{Path: "password", Message: "password must be at most 72 bytes"},
	})
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*TokenOut, error) {
	role := domain.RoleUser
	if in.Role != "" {
		role = domain.Role(in.Role)
	}
	if !role.Valid() {
		return nil, errs.Validation("Validation Error", []errs.FieldError{
			{Path: "role", Message: "unsupported role " + in.Role},
		})
	}

	if len(in.Password) > maxPasswordBytes {
		return nil, passwordTooLong()
	}

	email := normalizeEmail(in.Email)
	exist, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, errs.Conflict("Email already registered")
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, passwordTooLong()
	}
	if err != nil {
		return nil, errs.Internal("hash password failed", err)
	}
	u := &domain.User{Name: strings.TrimSpace(in.Name), Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, errs.Conflict("Email already registered")
		}
		return nil, err
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID))
	return s.issue(u)
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*TokenOut, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.NotFound("User does not exist")
	}
	if !s.hasher.Check(in.Password, u.PasswordHash) {
		return nil, errs.Unauthorized("Password is incorrect")
	}
	return s.issue(u)
}

func (s *UserService) issue(u *domain.User) (*TokenOut, error) {
	tok, err := s.tokens.Issue(auth.Claims{UserID: u.ID, Email: u.Email, Role: string(u.Role), Name: u.Name})
	if err != nil {
		return nil, errs.Internal("issue token failed", err)
	}
	return &TokenOut{AccessToken: tok}, nil
}

func (s *UserService) mustUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.NotFound("User does not exist")
	}
	return u, nil
}

func (s *UserService) profile(ctx context.Context, u *domain.User) (*domain.Profile, error) {
	es, err := s.users.ListEntries(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return domain.NewProfile(u, es), nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	u, err := s.mustUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, u)
}

// AddToList 同一用户同一书单内 bookId 不可重复
func (s *UserService) AddToList(ctx context.Context, list domain.ListKind, userID, bookID string) (*domain.Profile, error) {
	u, err := s.mustUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errs.NotFound("Book does not exist")
	}
	has, err := s.users.HasListEntry(ctx, u.ID, list, bookID)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, errs.Conflict("Book already in " + list.Label())
	}
	if err := s.users.AddListEntry(ctx, &domain.ListEntry{UserID: u.ID, List: list, BookID: bookID}); err != nil {
		return nil, err
	}
	return s.profile(ctx, u)
}

func (s *UserService) RemoveFromList(ctx context.Context, list domain.ListKind, userID, entryID string) (*domain.Profile, error) {
	u, err := s.mustUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok, err := s.users.RemoveListEntry(ctx, u.ID, list, entryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound(list.Label() + " entry does not exist")
	}
	return s.profile(ctx, u)
}
