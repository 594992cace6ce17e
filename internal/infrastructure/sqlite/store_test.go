package sqlite

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-directory/internal/domain/entity"
	"github.com/oksasatya/user-directory/internal/domain/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store, err := Open(filepath.Join(t.TempDir(), "users.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testUser(name, email string) *entity.User {
	return &entity.User{
		Name:        name,
		Email:       email,
		Phone:       "+15550100",
		DateOfBirth: "1990-01-02",
	}
}

func mustCreate(t *testing.T, store *Store, name, email string) *entity.User {
	t.Helper()
	u := testUser(name, email)
	require.NoError(t, store.Create(context.Background(), u))
	return u
}

func TestOpenRequiresPath(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	_, err := Open("  ", logger)
	assert.Error(t, err)
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := mustCreate(t, store, "Alice", "alice@example.com")
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "1990-01-02", got.DateOfBirth)
	assert.Nil(t, got.ProfileImage)
	assert.Equal(t, u.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())
}

func TestCreateDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := mustCreate(t, store, "Alice", "alice@example.com")

	dup := testUser("Other Alice", "alice@example.com")
	err := store.Create(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	second := mustCreate(t, store, "Bob", "bob@example.com")
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGetByIDNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, store, "Alice", "alice@example.com")
	b := mustCreate(t, store, "Bob", "bob@example.com")
	c := mustCreate(t, store, "Carol", "carol@example.com")

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{users[0].ID, users[1].ID, users[2].ID})
}

func TestUpdatePartial(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := mustCreate(t, store, "Alice", "alice@example.com")

	name := "Alicia"
	got, err := store.Update(ctx, u.ID, repository.UserUpdate{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Alicia", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "+15550100", got.Phone)
	assert.Equal(t, "1990-01-02", got.DateOfBirth)
	assert.Nil(t, got.ProfileImage)
}

func TestUpdateSetToEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := mustCreate(t, store, "Alice", "alice@example.com")

	// A present-but-empty field is applied; absence leaves fields alone.
	empty := ""
	got, err := store.Update(ctx, u.ID, repository.UserUpdate{Phone: &empty})
	require.NoError(t, err)
	assert.Equal(t, "", got.Phone)
	assert.Equal(t, "Alice", got.Name)
}

func TestUpdateNoFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := mustCreate(t, store, "Alice", "alice@example.com")

	got, err := store.Update(ctx, u.ID, repository.UserUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

func TestUpdateNotFound(t *testing.T) {
	store := newTestStore(t)
	name := "X"
	_, err := store.Update(context.Background(), "missing", repository.UserUpdate{Name: &name})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, "Alice", "alice@example.com")
	b := mustCreate(t, store, "Bob", "bob@example.com")

	email := "alice@example.com"
	_, err := store.Update(ctx, b.ID, repository.UserUpdate{Email: &email})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestFollow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, store, "Alice", "alice@example.com")
	b := mustCreate(t, store, "Bob", "bob@example.com")

	require.NoError(t, store.Follow(ctx, a.ID, b.ID))

	following, err := store.FollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, following)

	followers, err := store.FollowerIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, followers)

	nFollowing, err := store.CountFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, len(following), nFollowing)

	nFollowers, err := store.CountFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, len(followers), nFollowers)
}

func TestFollowSelf(t *testing.T) {
	store := newTestStore(t)
	a := mustCreate(t, store, "Alice", "alice@example.com")
	err := store.Follow(context.Background(), a.ID, a.ID)
	assert.ErrorIs(t, err, repository.ErrSelfFollow)
}

func TestFollowMissingUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, store, "Alice", "alice@example.com")

	assert.ErrorIs(t, store.Follow(ctx, a.ID, "missing"), repository.ErrNotFound)
	assert.ErrorIs(t, store.Follow(ctx, "missing", a.ID), repository.ErrNotFound)
}

func TestFollowTwice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, store, "Alice", "alice@example.com")
	b := mustCreate(t, store, "Bob", "bob@example.com")

	require.NoError(t, store.Follow(ctx, a.ID, b.ID))
	assert.ErrorIs(t, store.Follow(ctx, a.ID, b.ID), repository.ErrAlreadyFollowing)
}

func TestUnfollowIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, store, "Alice", "alice@example.com")
	b := mustCreate(t, store, "Bob", "bob@example.com")

	// No edge, even no such users: still a no-op.
	assert.NoError(t, store.Unfollow(ctx, a.ID, b.ID))
	assert.NoError(t, store.Unfollow(ctx, "ghost", "phantom"))

	require.NoError(t, store.Follow(ctx, a.ID, b.ID))
	require.NoError(t, store.Unfollow(ctx, a.ID, b.ID))

	n, err := store.CountFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, store, "Alice", "alice@example.com")
	b := mustCreate(t, store, "Bob", "bob@example.com")

	require.NoError(t, store.Follow(ctx, a.ID, b.ID))
	require.NoError(t, store.Follow(ctx, b.ID, a.ID))

	require.NoError(t, store.Delete(ctx, a.ID))

	_, err := store.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// No dangling edges on either side.
	followers, err := store.FollowerIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.NotContains(t, followers, a.ID)

	following, err := store.FollowingIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.NotContains(t, following, a.ID)
}

func TestDeleteNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEmailReusableAfterDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, store, "Alice", "alice@example.com")
	require.NoError(t, store.Delete(ctx, a.ID))

	// Uniqueness applies to live records only.
	again := testUser("Alice Again", "alice@example.com")
	require.NoError(t, store.Create(ctx, again))
	assert.NotEqual(t, a.ID, again.ID)
}
