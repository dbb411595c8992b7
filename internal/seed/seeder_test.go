package seed

import (
	"context"
	"testing"

	"github.com/afivan20/yatube/internal/database"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDevAndClean(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	defer database.Close(db)
	ctx := context.Background()

	s := NewSeeder(db)
	summary, err := s.SeedDev(ctx, Options{Users: 4, Groups: 2, Posts: 15, Comments: 10, Follows: 5, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, &Summary{Users: 4, Groups: 2, Posts: 15, Comments: 10, Follows: 5}, summary)

	posts := repository.NewPostRepository(db)
	n, err := posts.CountPosts(ctx, repository.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)

	users := repository.NewUserRepository(db)
	list, err := users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.NotEmpty(t, list[0].PasswordHash)

	require.NoError(t, s.Clean(ctx))
	n, err = posts.CountPosts(ctx, repository.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
	count, err := users.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSeedFollowsCapsAtAvailablePairs(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	defer database.Close(db)

	summary, err := NewSeeder(db).SeedDev(context.Background(), Options{Users: 2, Follows: 10, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Follows)
}
