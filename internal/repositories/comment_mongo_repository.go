package repositories

import (
	"context"
	"fmt"
	"time"

	"arthemis/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCommentRepository is a MongoDB implementation of CommentRepository.
type MongoCommentRepository struct {
	col *mongo.Collection
}

// NewMongoCommentRepository creates a new instance of MongoCommentRepository.
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{col: db.Collection("comments")}
}

func (r *MongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	if _, err := r.col.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *MongoCommentRepository) ListByArtwork(ctx context.Context, artworkID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"artwork_id": artworkID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments := make([]models.Comment, 0)
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (r *MongoCommentRepository) CountByArtwork(ctx context.Context, artworkID string) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"artwork_id": artworkID})
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return n, nil
}

func (r *MongoCommentRepository) DeleteByArtwork(ctx context.Context, artworkID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"artwork_id": artworkID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	return res.DeletedCount, nil
}
