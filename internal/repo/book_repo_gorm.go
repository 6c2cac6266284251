package repo

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"book-catalog-api/internal/domain"
	"book-catalog-api/pkg/utils"
)

type BookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) *BookRepo { return &BookRepo{db: db} }

func (r *BookRepo) Create(ctx context.Context, b *domain.Book) error {
	if b.ID == "" {
		b.ID = utils.NewID()
	}
	return pkgerrors.Wrap(r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error, "create book")
}

func reviewsByDate(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

func (r *BookRepo) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Reviews", reviewsByDate).
		First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find book")
	}
	return &b, nil
}

// List 过滤 + 排序 + 分页；Count 默认为全表总数
func (r *BookRepo) List(ctx context.Context, q domain.BookQuery) (*domain.BookPage, error) {
	where, args, err := bookPredicate(q.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "build book filter")
	}

	db := r.db.WithContext(ctx)
	filtered := db.Model(&domain.Book{}).Joins(authorJoin)
	if where != "" {
		filtered = filtered.Where(where, args...)
	}

	var count int64
	counter := db.Model(&domain.Book{})
	if q.CountFiltered {
		counter = filtered.Session(&gorm.Session{})
	}
	if err := counter.Count(&count).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "count books")
	}

	items := make([]domain.Book, 0, q.Page.Limit)
	err = filtered.Session(&gorm.Session{}).
		Select("books.*").
		Order(clause.OrderBy{Columns: bookOrder(q.Page)}).
		Offset(q.Page.Skip).
		Limit(q.Page.Limit).
		Preload("Author").
		Preload("Reviews", reviewsByDate).
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list books")
	}

	return &domain.BookPage{Items: items, Page: q.Page.Page, Limit: q.Page.Limit, Count: count}, nil
}

func (r *BookRepo) Update(ctx context.Context, id string, ch domain.BookChanges) error {
	if ch.Empty() {
		return nil
	}
	set := map[string]any{}
	if ch.Title != nil {
		set["title"] = *ch.Title
	}
	if ch.Genre != nil {
		set["genre"] = *ch.Genre
	}
	if ch.AuthorID != nil {
		set["author_id"] = *ch.AuthorID
	}
	if ch.PublicationDate != nil {
		set["publication_date"] = *ch.PublicationDate
	}
	err := r.db.WithContext(ctx).Model(&domain.Book{}).Where("id = ?", id).Updates(set).Error
	return pkgerrors.Wrap(err, "update book")
}

// DeleteByAuthor 仅删除 authorID 名下的书；不存在返回 (nil, nil)。
// 评论和书单条目在同一事务内清理
func (r *BookRepo) DeleteByAuthor(ctx context.Context, id, authorID string) (*domain.Book, error) {
	var deleted *domain.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b domain.Book
		err := tx.Preload("Author").First(&b, "id = ? AND author_id = ?", id, authorID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&domain.ListEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Book{}, "id = ?", id).Error; err != nil {
			return err
		}
		deleted = &b
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "delete book")
	}
	return deleted, nil
}

func (r *BookRepo) AddReview(ctx context.Context, rv *domain.Review) error {
	if rv.ID == "" {
		rv.ID = utils.NewID()
	}
	return pkgerrors.Wrap(r.db.WithContext(ctx).Create(rv).Error, "add review")
}

func (r *BookRepo) FindReview(ctx context.Context, id string) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).First(&rv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find review")
	}
	return &rv, nil
}

func (r *BookRepo) DeleteReview(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Review{}, "id = ?", id)
	if res.Error != nil {
		return false, pkgerrors.Wrap(res.Error, "delete review")
	}
	return res.RowsAffected > 0, nil
}
