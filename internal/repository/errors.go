package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("record already exists")

	ErrUserNotFound  = fmt.Errorf("user: %w", ErrNotFound)
	ErrPostNotFound  = fmt.Errorf("post: %w", ErrNotFound)
	ErrGroupNotFound = fmt.Errorf("group: %w", ErrNotFound)
)

// translate maps gorm sentinels onto the package's errors.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
