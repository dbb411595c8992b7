package database

import (
	"fmt"

	"github.com/afivan20/yatube/internal/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpenInMemory returns a migrated, private in-memory sqlite database.
// Each call gets its own database, which makes it convenient for tests and
// for dry runs of the admin CLI.
func OpenInMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", URL: dsn}, config.EnvTest)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
