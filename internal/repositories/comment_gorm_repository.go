package repositories

import (
	"context"
	"fmt"

	"arthemis/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCommentRepository is a GORM implementation of CommentRepository.
type GORMCommentRepository struct {
	db *gorm.DB
}

// NewGORMCommentRepository creates a new instance of GORMCommentRepository.
func NewGORMCommentRepository(db *gorm.DB) *GORMCommentRepository {
	return &GORMCommentRepository{
		db: db,
	}
}

// Create creates a new comment in the database.
func (r *GORMCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListByArtwork returns the artwork's comments, newest first.
func (r *GORMCommentRepository) ListByArtwork(ctx context.Context, artworkID string) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := r.db.WithContext(ctx).Where("artwork_id = ?", artworkID).
		Order("created_at DESC").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CountByArtwork returns the number of comments on the artwork.
func (r *GORMCommentRepository) CountByArtwork(ctx context.Context, artworkID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("artwork_id = ?", artworkID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return n, nil
}

// DeleteByArtwork removes every comment on the artwork.
func (r *GORMCommentRepository) DeleteByArtwork(ctx context.Context, artworkID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("artwork_id = ?", artworkID).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", res.Error)
	}
	return res.RowsAffected, nil
}
