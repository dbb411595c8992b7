package repository

import (
	"context"

	"github.com/afivan20/yatube/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. The zero value selects every post.
type PostFilter struct {
	GroupSlug      string
	AuthorID       uint
	AuthorUsername string
	FollowerID     uint
}

// PostRepository handles reads and writes for posts
type PostRepository interface {
	ListPosts(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
	GetPost(ctx context.Context, postID uint) (*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, postID uint) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) filtered(ctx context.Context, filter PostFilter) *gorm.DB {
	db := r.db.WithContext(ctx)
	query := db.Model(&models.Post{})

	if filter.GroupSlug != "" {
		query = query.Where("group_id IN (?)",
			db.Model(&models.Group{}).Select("id").Where("slug = ?", filter.GroupSlug))
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.AuthorUsername != "" {
		query = query.Where("author_id IN (?)",
			db.Model(&models.User{}).Select("id").Where("username = ?", filter.AuthorUsername))
	}
	if filter.FollowerID != 0 {
		query = query.Where("author_id IN (?)",
			db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", filter.FollowerID))
	}
	return query
}

// ListPosts returns posts newest first with author and group loaded.
func (r *postRepository) ListPosts(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.filtered(ctx, filter).
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

func (r *postRepository) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, postID).Error
	if err != nil {
		return nil, translate(err, ErrPostNotFound)
	}
	return &post, nil
}

func (r *postRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post == nil || post.AuthorID == 0 {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// UpdatePost writes the editable fields only; author and pub_date are fixed.
func (r *postRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	if post == nil || post.ID == 0 {
		return ErrInvalidInput
	}
	result := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepository) DeletePost(ctx context.Context, postID uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, postID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}
