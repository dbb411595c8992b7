package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/afivan20/yatube/internal/database"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestCLI(t *testing.T) (*cli, *gorm.DB) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	c := &cli{openDB: func(context.Context) (*gorm.DB, func() error, error) {
		return db, func() error { return nil }, nil
	}}
	return c, db
}

func run(t *testing.T, c *cli, args ...string) (string, error) {
	t.Helper()
	root := c.rootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGroupCommands(t *testing.T) {
	c, db := newTestCLI(t)

	out, err := run(t, c, "group", "create", "cats", "Cats", "-d", "All about cats")
	require.NoError(t, err)
	assert.Contains(t, out, "cats\tCats")

	group, err := repository.NewGroupRepository(db).GetGroupBySlug(context.Background(), "cats")
	require.NoError(t, err)
	require.NotNil(t, group.Description)
	assert.Equal(t, "All about cats", *group.Description)

	_, err = run(t, c, "group", "create", "cats", "Again")
	assert.Error(t, err)

	out, err = run(t, c, "group", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "cats")

	_, err = run(t, c, "group", "delete", "cats")
	require.NoError(t, err)

	out, err = run(t, c, "group", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No groups found.")

	_, err = run(t, c, "group", "delete", "cats")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserCommands(t *testing.T) {
	c, db := newTestCLI(t)

	out, err := run(t, c, "user", "create", "leo", "secret-password", "--first-name", "Лев", "--last-name", "Толстой")
	require.NoError(t, err)
	assert.Contains(t, out, "leo")

	out, err = run(t, c, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Лев Толстой")

	_, err = run(t, c, "user", "delete", "leo")
	require.NoError(t, err)

	count, err := repository.NewUserRepository(db).CountUsers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = run(t, c, "user", "delete", "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSeedAndMigrate(t *testing.T) {
	c, db := newTestCLI(t)

	_, err := run(t, c, "migrate")
	require.NoError(t, err)

	args := []string{"seed", "--users", "3", "--groups", "2", "--posts", "5", "--comments", "4", "--follows", "2", "--seed", "7"}
	_, err = run(t, c, args...)
	require.NoError(t, err)
	_, err = run(t, c, append(args, "--clean")...)
	require.NoError(t, err)

	posts, err := repository.NewPostRepository(db).CountPosts(context.Background(), repository.PostFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, posts)
}

func TestArgumentValidation(t *testing.T) {
	c, _ := newTestCLI(t)

	_, err := run(t, c, "group", "create", "only-slug")
	assert.Error(t, err)
	_, err = run(t, c, "migrate", "extra")
	assert.Error(t, err)
}
