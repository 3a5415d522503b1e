package repositories

import (
	"context"
	"fmt"
	"time"

	"arthemis/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCollectionRepository is a GORM implementation of CollectionRepository.
type GORMCollectionRepository struct {
	db *gorm.DB
}

// NewGORMCollectionRepository creates a new instance of GORMCollectionRepository.
func NewGORMCollectionRepository(db *gorm.DB) *GORMCollectionRepository {
	return &GORMCollectionRepository{
		db: db,
	}
}

// Find returns the matching collections, newest first.
func (r *GORMCollectionRepository) Find(ctx context.Context, filter CollectionFilter) ([]models.Collection, error) {
	q := r.db.WithContext(ctx)
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.ViewerID != "" {
		q = q.Where("(is_private = ? OR user_id = ?)", false, filter.ViewerID)
	} else {
		q = q.Where("is_private = ?", false)
	}

	collections := make([]models.Collection, 0)
	if err := q.Order("created_at DESC").Find(&collections).Error; err != nil {
		return nil, fmt.Errorf("failed to find collections: %w", err)
	}
	return collections, nil
}

// GetByID retrieves a single collection by its ID from the database.
func (r *GORMCollectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get collection by ID %s: %w", id, gormErr(err))
	}
	return &collection, nil
}

// Create creates a new collection in the database.
func (r *GORMCollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	if collection.ID == "" {
		collection.ID = uuid.New().String()
	}
	collection.Normalize()
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		return fmt.Errorf("failed to create collection: %w", gormErr(err))
	}
	return nil
}

// Update writes the editable fields of the collection. The artwork list keeps
// its stored value.
func (r *GORMCollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	collection.Normalize()
	res := r.db.WithContext(ctx).Model(&models.Collection{}).Where("id = ?", collection.ID).
		Select("*").Omit("id", "created_at", "artworks").Updates(collection)
	if res.Error != nil {
		return fmt.Errorf("failed to update collection: %w", gormErr(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("collection with ID %s not found for update: %w", collection.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a collection by its ID from the database.
func (r *GORMCollectionRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Collection{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete collection: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("collection with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// editArtworks applies fn to the locked row and writes back the artwork list
// and cover.
func (r *GORMCollectionRepository) editArtworks(ctx context.Context, id string, fn func(c *models.Collection) error) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("id = ?", id).First(&collection).Error; err != nil {
			return fmt.Errorf("failed to load collection %s: %w", id, gormErr(err))
		}
		if err := fn(&collection); err != nil {
			return fmt.Errorf("failed to update artworks of collection %s: %w", id, err)
		}
		collection.UpdatedAt = time.Now()
		if err := tx.Model(&collection).Select("artworks", "cover_image", "updated_at").Updates(&collection).Error; err != nil {
			return fmt.Errorf("failed to update artworks of collection %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// AddArtwork prepends artworkID to the collection.
func (r *GORMCollectionRepository) AddArtwork(ctx context.Context, id, artworkID, cover string) (*models.Collection, error) {
	return r.editArtworks(ctx, id, func(c *models.Collection) error {
		return addArtwork(c, artworkID, cover)
	})
}

// RemoveArtwork drops artworkID from the collection.
func (r *GORMCollectionRepository) RemoveArtwork(ctx context.Context, id, artworkID, cover string) (*models.Collection, error) {
	return r.editArtworks(ctx, id, func(c *models.Collection) error {
		return removeArtwork(c, artworkID, cover)
	})
}
