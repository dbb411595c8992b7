package repository

import (
	"context"

	"github.com/afivan20/yatube/internal/models"
	"gorm.io/gorm"
)

// GroupRepository handles reads and admin writes for groups
type GroupRepository interface {
	GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error)
	GetGroup(ctx context.Context, groupID uint) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	CreateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, slug string) error
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	if err != nil {
		return nil, translate(err, ErrGroupNotFound)
	}
	return &group, nil
}

func (r *groupRepository) GetGroup(ctx context.Context, groupID uint) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).First(&group, groupID).Error
	if err != nil {
		return nil, translate(err, ErrGroupNotFound)
	}
	return &group, nil
}

func (r *groupRepository) ListGroups(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.WithContext(ctx).Order("title").Order("id").Find(&groups).Error
	return groups, err
}

func (r *groupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	if group == nil || group.Title == "" || group.Slug == "" {
		return ErrInvalidInput
	}
	return translate(r.db.WithContext(ctx).Create(group).Error, ErrGroupNotFound)
}

// DeleteGroup removes the group and detaches its posts.
func (r *groupRepository) DeleteGroup(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.Where("slug = ?", slug).First(&group).Error; err != nil {
			return translate(err, ErrGroupNotFound)
		}
		if err := tx.Model(&models.Post{}).Where("group_id = ?", group.ID).Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
}
