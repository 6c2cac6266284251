package domain

import (
	"math"
	"strings"

	"book-catalog-api/internal/core/errs"
)

const (
	DefaultPage      = 1
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "desc"

	// MaxPage 保证 (page-1)*limit 不溢出
	MaxPage = math.MaxInt / MaxLimit
)

// BookSortColumns sortBy 白名单 → 列名
var BookSortColumns = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"title":           "title",
	"genre":           "genre",
	"publicationDate": "publication_date",
}

type PageOptions struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// Pagination 归一化后的分页参数
type Pagination struct {
	Page       int
	Limit      int
	Skip       int
	SortBy     string
	SortColumn string
	Desc       bool
}

// Normalize 填默认值并校验排序字段
func (o PageOptions) Normalize() (Pagination, error) {
	p := Pagination{Page: o.Page, Limit: o.Limit}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Skip = (p.Page - 1) * p.Limit

	p.SortBy = strings.TrimSpace(o.SortBy)
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	col, ok := BookSortColumns[p.SortBy]
	if !ok {
		return Pagination{}, errs.Validation("Validation Error", []errs.FieldError{
			{Path: "sortBy", Message: "unsupported sort field " + p.SortBy},
		})
	}
	p.SortColumn = col

	switch strings.ToLower(strings.TrimSpace(o.SortOrder)) {
	case "", "desc", "descending", "-1":
		p.Desc = true
	case "asc", "ascending", "1":
		p.Desc = false
	default:
		return Pagination{}, errs.Validation("Validation Error", []errs.FieldError{
			{Path: "sortOrder", Message: "sortOrder must be asc or desc"},
		})
	}
	return p, nil
}

// BookFilters searchTerm 为模糊搜索，其余字段精确匹配
type BookFilters struct {
	SearchTerm string `form:"searchTerm"`
	Title      string `form:"title"`
	Genre      string `form:"genre"`
	Author     string `form:"author"`
}

// Exact 返回已提供的精确匹配字段
func (f BookFilters) Exact() map[string]string {
	out := map[string]string{}
	if f.Title != "" {
		out["title"] = f.Title
	}
	if f.Genre != "" {
		out["genre"] = f.Genre
	}
	if f.Author != "" {
		out["author_id"] = f.Author
	}
	return out
}

type BookQuery struct {
	Page          Pagination
	Filters       BookFilters
	CountFiltered bool
}

type BookPage struct {
	Items []Book
	Page  int
	Limit int
	Count int64
}
