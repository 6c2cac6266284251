package domain

import (
	"context"
	"time"
)

type Role string

const RoleUser Role = "user"

// Roles 允许注册的角色
var Roles = []Role{RoleUser}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// ListKind 用户书单类型
type ListKind string

const (
	ListWish      ListKind = "wishlist"
	ListReadSoon  ListKind = "reading-soon"
	ListCompleted ListKind = "read-completed"
)

func (k ListKind) Label() string {
	switch k {
	case ListWish:
		return "Wish List"
	case ListReadSoon:
		return "Read Soon"
	case ListCompleted:
		return "Complete Read"
	}
	return string(k)
}

// ListEntry 书单条目；按条目 ID 删除，按 BookID 判重
type ListEntry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index:idx_list_entries_user_list" json:"-"`
	List      ListKind  `gorm:"size:32;not null;index:idx_list_entries_user_list" json:"-"`
	BookID    string    `gorm:"size:36;not null;index" json:"bookId"`
	Book      *Book     `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ListEntry) TableName() string { return "list_entries" }

// Profile 用户 + 三个已解析的书单
type Profile struct {
	*User
	WishList          []ListEntry `json:"wishList"`
	ReadSoonBook      []ListEntry `json:"readSoonBook"`
	CompletedReadBook []ListEntry `json:"completedReadBook"`
}

// NewProfile 按书单类型拆分条目，保持插入顺序
func NewProfile(u *User, entries []ListEntry) *Profile {
	p := &Profile{
		User:              u,
		WishList:          []ListEntry{},
		ReadSoonBook:      []ListEntry{},
		CompletedReadBook: []ListEntry{},
	}
	for _, e := range entries {
		switch e.List {
		case ListWish:
			p.WishList = append(p.WishList, e)
		case ListReadSoon:
			p.ReadSoonBook = append(p.ReadSoonBook, e)
		case ListCompleted:
			p.CompletedReadBook = append(p.CompletedReadBook, e)
		}
	}
	return p
}

// UserRepository 查询类方法在记录不存在时返回 (nil, nil)
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListEntries(ctx context.Context, userID string) ([]ListEntry, error)
	HasListEntry(ctx context.Context, userID string, list ListKind, bookID string) (bool, error)
	AddListEntry(ctx context.Context, e *ListEntry) error
	RemoveListEntry(ctx context.Context, userID string, list ListKind, entryID string) (bool, error)
}
