package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-catalog-api/internal/domain"
	"book-catalog-api/internal/testutil"
)

var pubDate = time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC)

func seedBook(t *testing.T, r *BookRepo, title, genre, authorID string) *domain.Book {
	t.Helper()
	b := &domain.Book{Title: title, Genre: genre, AuthorID: authorID, PublicationDate: pubDate}
	require.NoError(t, r.Create(context.Background(), b))
	return b
}

func mustPage(t *testing.T, o domain.PageOptions) domain.Pagination {
	t.Helper()
	p, err := o.Normalize()
	require.NoError(t, err)
	return p
}

func titles(bs []domain.Book) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Title
	}
	return out
}

func TestBookRepo_ListPagination(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users, books := NewUserRepo(db), NewBookRepo(db)
	a := seedUser(t, users, "Ann", "ann@example.com")

	// 乱序插入，排序结果不依赖插入顺序
	for _, i := range []int{7, 3, 12, 1, 9, 5, 11, 2, 8, 4, 10, 6} {
		seedBook(t, books, fmt.Sprintf("Book %02d", i), "fiction", a.ID)
	}

	page, err := books.List(ctx, domain.BookQuery{
		Page: mustPage(t, domain.PageOptions{Page: 2, Limit: 5, SortBy: "title", SortOrder: "asc"}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Book 06", "Book 07", "Book 08", "Book 09", "Book 10"}, titles(page.Items))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.Limit)
	assert.EqualValues(t, 12, page.Count)

	page, err = books.List(ctx, domain.BookQuery{
		Page: mustPage(t, domain.PageOptions{Page: 1, Limit: 3, SortBy: "title", SortOrder: "desc"}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Book 12", "Book 11", "Book 10"}, titles(page.Items))

	page, err = books.List(ctx, domain.BookQuery{
		Page: mustPage(t, domain.PageOptions{Page: 4, Limit: 5}),
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.EqualValues(t, 12, page.Count)
}

func TestBookRepo_ListFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users, books := NewUserRepo(db), NewBookRepo(db)
	herbert := seedUser(t, users, "Frank Herbert", "frank@example.com")
	austen := seedUser(t, users, "Jane Austen", "jane@example.com")

	seedBook(t, books, "Dune", "sci-fi", herbert.ID)
	seedBook(t, books, "Children of Dune", "sci-fi", herbert.ID)
	seedBook(t, books, "Emma", "romance", austen.ID)
	seedBook(t, books, "100% Pure", "misc", austen.ID)

	p := mustPage(t, domain.PageOptions{SortBy: "title", SortOrder: "asc"})
	tests := []struct {
		name     string
		filters  domain.BookFilters
		filtered bool
		want     []string
		count    int64
	}{
		{name: "no filters", want: []string{"100% Pure", "Children of Dune", "Dune", "Emma"}, count: 4},
		{name: "search title case insensitive", filters: domain.BookFilters{SearchTerm: "dUNe"}, want: []string{"Children of Dune", "Dune"}, count: 4},
		{name: "search genre", filters: domain.BookFilters{SearchTerm: "roman"}, want: []string{"Emma"}, count: 4},
		{name: "search author name", filters: domain.BookFilters{SearchTerm: "austen"}, want: []string{"100% Pure", "Emma"}, count: 4},
		{name: "search wildcard is literal", filters: domain.BookFilters{SearchTerm: "0%"}, want: []string{"100% Pure"}, count: 4},
		{name: "underscore is literal", filters: domain.BookFilters{SearchTerm: "_"}, want: []string{}, count: 4},
		{name: "exact genre", filters: domain.BookFilters{Genre: "sci-fi"}, want: []string{"Children of Dune", "Dune"}, count: 4},
		{name: "exact title", filters: domain.BookFilters{Title: "Dune"}, want: []string{"Dune"}, count: 4},
		{name: "exact author", filters: domain.BookFilters{Author: austen.ID}, want: []string{"100% Pure", "Emma"}, count: 4},
		{name: "search and exact combined", filters: domain.BookFilters{SearchTerm: "dune", Title: "Dune"}, want: []string{"Dune"}, count: 4},
		{name: "filtered count", filters: domain.BookFilters{Genre: "sci-fi"}, filtered: true, want: []string{"Children of Dune", "Dune"}, count: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := books.List(ctx, domain.BookQuery{Page: p, Filters: tt.filters, CountFiltered: tt.filtered})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(page.Items))
			assert.Equal(t, tt.count, page.Count)
		})
	}
}

func TestBookRepo_FindUpdateAndReviews(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users, books := NewUserRepo(db), NewBookRepo(db)
	a := seedUser(t, users, "Ann", "ann@example.com")
	b := seedBook(t, books, "Dune", "sci-fi", a.ID)

	got, err := books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Ann", got.Author.Name)
	assert.Empty(t, got.Reviews)

	missing, err := books.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	genre := "classic"
	require.NoError(t, books.Update(ctx, b.ID, domain.BookChanges{Genre: &genre}))
	require.NoError(t, books.Update(ctx, b.ID, domain.BookChanges{}))
	got, err = books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "classic", got.Genre)
	assert.Equal(t, "Dune", got.Title)

	rv := &domain.Review{BookID: b.ID, Name: "Bob", Email: "bob@example.com", Review: "great"}
	require.NoError(t, books.AddReview(ctx, rv))
	found, err := books.FindReview(ctx, rv.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "great", found.Review)

	got, err = books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Reviews, 1)

	ok, err := books.DeleteReview(ctx, rv.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = books.DeleteReview(ctx, rv.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookRepo_DeleteByAuthor(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users, books := NewUserRepo(db), NewBookRepo(db)
	ann := seedUser(t, users, "Ann", "ann@example.com")
	bob := seedUser(t, users, "Bob", "bob@example.com")
	b := seedBook(t, books, "Dune", "sci-fi", ann.ID)

	require.NoError(t, books.AddReview(ctx, &domain.Review{BookID: b.ID, Name: "Bob", Email: "bob@example.com", Review: "ok"}))
	require.NoError(t, users.AddListEntry(ctx, &domain.ListEntry{UserID: bob.ID, List: domain.ListWish, BookID: b.ID}))

	// 非作者删除：无结果，书仍在
	deleted, err := books.DeleteByAuthor(ctx, b.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)
	still, err := books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, still)

	deleted, err = books.DeleteByAuthor(ctx, b.ID, ann.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "Dune", deleted.Title)

	gone, err := books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var reviews, entries int64
	require.NoError(t, db.Model(&domain.Review{}).Where("book_id = ?", b.ID).Count(&reviews).Error)
	require.NoError(t, db.Model(&domain.ListEntry{}).Where("book_id = ?", b.ID).Count(&entries).Error)
	assert.Zero(t, reviews)
	assert.Zero(t, entries)

	deleted, err = books.DeleteByAuthor(ctx, b.ID, ann.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "a!%b!_c!!", escapeLike("a%b_c!"))
}

func TestBookPredicate(t *testing.T) {
	sql, args, err := bookPredicate(domain.BookFilters{})
	require.NoError(t, err)
	assert.Empty(t, sql)
	assert.Empty(t, args)

	sql, args, err = bookPredicate(domain.BookFilters{SearchTerm: "Dune", Genre: "sci-fi"})
	require.NoError(t, err)
	assert.Contains(t, sql, "LOWER(authors.name) LIKE ? ESCAPE '!'")
	assert.Contains(t, sql, "books.genre = ?")
	assert.Equal(t, []any{"%dune%", "%dune%", "%dune%", "sci-fi"}, args)
}
