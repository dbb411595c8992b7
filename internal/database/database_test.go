package database

import (
	"context"
	"testing"

	"github.com/afivan20/yatube/internal/config"
	"github.com/afivan20/yatube/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "yatube.db?_foreign_keys=1", withForeignKeys("yatube.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=1", withForeignKeys("file:x?mode=memory"))
	assert.Equal(t, "file:x?_fk=1", withForeignKeys("file:x?_fk=1"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"}, config.EnvTest)
	assert.Error(t, err)
}

func TestOpenInMemoryMigratesAndIsolates(t *testing.T) {
	first, err := OpenInMemory()
	require.NoError(t, err)
	defer Close(first)

	second, err := OpenInMemory()
	require.NoError(t, err)
	defer Close(second)

	require.NoError(t, Health(context.Background(), first))

	for _, model := range models.All() {
		assert.True(t, first.Migrator().HasTable(model))
	}

	require.NoError(t, first.Create(&models.User{Username: "V.Pupkin"}).Error)

	var count int64
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer Close(db)

	assert.NoError(t, Migrate(db))
}

func TestHealthWithoutDatabase(t *testing.T) {
	assert.Error(t, Health(context.Background(), nil))
	assert.NoError(t, Close(nil))
}
