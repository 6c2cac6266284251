package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-catalog-api/internal/domain"
	"book-catalog-api/internal/testutil"
)

func seedUser(t *testing.T, r *UserRepo, name, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, PasswordHash: "x", Role: domain.RoleUser}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestUserRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(testutil.NewDB(t))

	u := seedUser(t, r, "Ann", "ann@example.com")
	assert.NotEmpty(t, u.ID)

	got, err := r.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	got, err = r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ann", got.Name)

	got, err = r.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	r := NewUserRepo(testutil.NewDB(t))
	seedUser(t, r, "Ann", "ann@example.com")

	err := r.Create(context.Background(), &domain.User{Name: "Ann 2", Email: "ann@example.com", PasswordHash: "x", Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepo_ListEntries(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := NewUserRepo(db)
	books := NewBookRepo(db)

	ann := seedUser(t, users, "Ann", "ann@example.com")
	bob := seedUser(t, users, "Bob", "bob@example.com")
	b := &domain.Book{Title: "Dune", Genre: "sci-fi", AuthorID: bob.ID, PublicationDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, books.Create(ctx, b))

	ok, err := users.HasListEntry(ctx, ann.ID, domain.ListWish, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	e := &domain.ListEntry{UserID: ann.ID, List: domain.ListWish, BookID: b.ID}
	require.NoError(t, users.AddListEntry(ctx, e))
	assert.NotEmpty(t, e.ID)

	ok, err = users.HasListEntry(ctx, ann.ID, domain.ListWish, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// 其他用户、其他书单互不影响
	ok, err = users.HasListEntry(ctx, bob.ID, domain.ListWish, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = users.HasListEntry(ctx, ann.ID, domain.ListReadSoon, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	es, err := users.ListEntries(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, es, 1)
	require.NotNil(t, es[0].Book)
	assert.Equal(t, "Dune", es[0].Book.Title)
	require.NotNil(t, es[0].Book.Author)
	assert.Equal(t, "Bob", es[0].Book.Author.Name)

	removed, err := users.RemoveListEntry(ctx, bob.ID, domain.ListWish, e.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = users.RemoveListEntry(ctx, ann.ID, domain.ListCompleted, e.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = users.RemoveListEntry(ctx, ann.ID, domain.ListWish, e.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	es, err = users.ListEntries(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, es)
}
