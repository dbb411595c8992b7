package repository

import (
	"context"

	"github.com/afivan20/yatube/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository handles comments on posts
type CommentRepository interface {
	ListComments(ctx context.Context, postID uint) ([]*models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	CountCommentsByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// ListComments returns a post's comments oldest first.
func (r *commentRepository) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil || comment.PostID == 0 || comment.AuthorID == 0 {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

type postCommentCount struct {
	PostID uint
	Total  int64
}

// CountCommentsByPostIDs counts comments for many posts in one query.
// Posts without comments are absent from the result.
func (r *commentRepository) CountCommentsByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []postCommentCount
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}
