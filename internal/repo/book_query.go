package repo

import (
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm/clause"

	"book-catalog-api/internal/domain"
)

// 参与 searchTerm 模糊匹配的列
var searchColumns = []string{"books.title", "books.genre", "authors.name"}

const authorJoin = "LEFT JOIN users AS authors ON authors.id = books.author_id"

// escapeLike 用 ! 转义 LIKE 通配符，各方言通用
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// bookPredicate searchTerm 的 OR 组 AND 精确匹配；无条件时返回空串
func bookPredicate(f domain.BookFilters) (string, []any, error) {
	var and sq.And

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		or := make(sq.Or, 0, len(searchColumns))
		for _, col := range searchColumns {
			or = append(or, sq.Expr("LOWER("+col+") LIKE ? ESCAPE '!'", pattern))
		}
		and = append(and, or)
	}

	exact := f.Exact()
	if len(exact) > 0 {
		keys := make([]string, 0, len(exact))
		for k := range exact {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		eq := sq.Eq{}
		for _, k := range keys {
			eq["books."+k] = exact[k]
		}
		and = append(and, eq)
	}

	if len(and) == 0 {
		return "", nil, nil
	}
	return and.ToSql()
}

func bookOrder(p domain.Pagination) []clause.OrderByColumn {
	return []clause.OrderByColumn{
		{Column: clause.Column{Table: "books", Name: p.SortColumn}, Desc: p.Desc},
		{Column: clause.Column{Table: "books", Name: "id"}, Desc: p.Desc},
	}
}
