package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"arthemis/internal/models"

	"github.com/google/uuid"
)

// MemoryCommentRepository is an in-memory implementation of CommentRepository.
type MemoryCommentRepository struct {
	comments map[string]models.Comment
	mu       sync.RWMutex
}

// NewMemoryCommentRepository creates a new instance of MemoryCommentRepository.
func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{
		comments: make(map[string]models.Comment),
	}
}

// Create adds a new comment.
func (r *MemoryCommentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	r.comments[comment.ID] = *comment
	return nil
}

// ListByArtwork returns the artwork's comments, newest first.
func (r *MemoryCommentRepository) ListByArtwork(_ context.Context, artworkID string) ([]models.Comment, error) {
	r.mu.RLock()
	out := make([]models.Comment, 0)
	for _, c := range r.comments {
		if c.ArtworkID == artworkID {
			out = append(out, c)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CountByArtwork returns the number of comments on the artwork.
func (r *MemoryCommentRepository) CountByArtwork(_ context.Context, artworkID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, c := range r.comments {
		if c.ArtworkID == artworkID {
			n++
		}
	}
	return n, nil
}

// DeleteByArtwork removes every comment on the artwork.
func (r *MemoryCommentRepository) DeleteByArtwork(_ context.Context, artworkID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, c := range r.comments {
		if c.ArtworkID == artworkID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}
