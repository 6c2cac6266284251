package repo

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"book-catalog-api/internal/domain"
	"book-catalog-api/pkg/utils"
)

// ErrDuplicate 唯一约束冲突
var ErrDuplicate = errors.New("duplicate record")

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return ErrDuplicate
		}
		return pkgerrors.Wrap(err, "create user")
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find user by id")
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find user by email")
	}
	return &u, nil
}

// ListEntries 一次取出用户全部书单条目，Book/Author 批量预加载
func (r *UserRepo) ListEntries(ctx context.Context, userID string) ([]domain.ListEntry, error) {
	var es []domain.ListEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Preload("Book").
		Preload("Book.Author").
		Find(&es).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list entries")
	}
	return es, nil
}

func (r *UserRepo) HasListEntry(ctx context.Context, userID string, list domain.ListKind, bookID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ListEntry{}).
		Where("user_id = ? AND list = ? AND book_id = ?", userID, list, bookID).
		Count(&n).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "count list entries")
	}
	return n > 0, nil
}

func (r *UserRepo) AddListEntry(ctx context.Context, e *domain.ListEntry) error {
	if e.ID == "" {
		e.ID = utils.NewID()
	}
	return pkgerrors.Wrap(r.db.WithContext(ctx).Create(e).Error, "add list entry")
}

// RemoveListEntry 只删除属于该用户、该书单的条目
func (r *UserRepo) RemoveListEntry(ctx context.Context, userID string, list domain.ListKind, entryID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND list = ?", entryID, userID, list).
		Delete(&domain.ListEntry{})
	if res.Error != nil {
		return false, pkgerrors.Wrap(res.Error, "remove list entry")
	}
	return res.RowsAffected > 0, nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
