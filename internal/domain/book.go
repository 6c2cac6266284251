package domain

import (
	"context"
	"time"
)

type Book struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Title           string    `gorm:"size:255;not null;index" json:"title"`
	Genre           string    `gorm:"size:64;not null;index" json:"genre"`
	AuthorID        string    `gorm:"size:36;not null;index" json:"authorId"`
	Author          *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PublicationDate time.Time `gorm:"not null" json:"publicationDate"`
	Reviews         []Review  `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"reviews"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Book) TableName() string { return "books" }

type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	BookID    string    `gorm:"size:36;not null;index" json:"bookId"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:191;not null" json:"email"`
	Review    string    `gorm:"type:text;not null" json:"review"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Review) TableName() string { return "reviews" }

// BookChanges 部分更新；nil 字段不修改
type BookChanges struct {
	Title           *string
	Genre           *string
	AuthorID        *string
	PublicationDate *time.Time
}

func (c BookChanges) Empty() bool {
	return c.Title == nil && c.Genre == nil && c.AuthorID == nil && c.PublicationDate == nil
}

type BookRepository interface {
	Create(ctx context.Context, b *Book) error
	FindByID(ctx context.Context, id string) (*Book, error)
	List(ctx context.Context, q BookQuery) (*BookPage, error)
	Update(ctx context.Context, id string, ch BookChanges) error
	DeleteByAuthor(ctx context.Context, id, authorID string) (*Book, error)
	AddReview(ctx context.Context, r *Review) error
	FindReview(ctx context.Context, id string) (*Review, error)
	DeleteReview(ctx context.Context, id string) (bool, error)
}

// Models 参与迁移的全部模型
func Models() []any {
	return []any{&User{}, &Book{}, &Review{}, &ListEntry{}}
}
