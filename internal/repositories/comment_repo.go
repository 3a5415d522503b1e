package repositories

import (
	"context"

	"arthemis/internal/models"
)

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByArtwork(ctx context.Context, artworkID string) ([]models.Comment, error)
	CountByArtwork(ctx context.Context, artworkID string) (int64, error)
	DeleteByArtwork(ctx context.Context, artworkID string) (int64, error)
}
