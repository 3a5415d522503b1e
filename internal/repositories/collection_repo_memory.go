package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"arthemis/internal/models"

	"github.com/google/uuid"
)

// MemoryCollectionRepository is an in-memory implementation of CollectionRepository.
type MemoryCollectionRepository struct {
	collections map[string]models.Collection
	mu          sync.RWMutex
}

// NewMemoryCollectionRepository creates a new instance of MemoryCollectionRepository.
func NewMemoryCollectionRepository() *MemoryCollectionRepository {
	return &MemoryCollectionRepository{
		collections: make(map[string]models.Collection),
	}
}

func copyCollection(c models.Collection) models.Collection {
	c.Artworks = models.Clone(c.Artworks)
	c.Tags = models.Clone(c.Tags)
	return c
}

// Find returns the matching collections, newest first.
func (r *MemoryCollectionRepository) Find(_ context.Context, filter CollectionFilter) ([]models.Collection, error) {
	r.mu.RLock()
	out := make([]models.Collection, 0)
	for _, c := range r.collections {
		if filter.Matches(&c) {
			out = append(out, copyCollection(c))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetByID returns a collection by its ID.
func (r *MemoryCollectionRepository) GetByID(_ context.Context, id string) (*models.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = copyCollection(c)
	return &c, nil
}

// Create adds a new collection.
func (r *MemoryCollectionRepository) Create(_ context.Context, collection *models.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if collection.ID == "" {
		collection.ID = uuid.New().String()
	}
	collection.Normalize()
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = time.Now()
	}
	collection.UpdatedAt = collection.CreatedAt
	r.collections[collection.ID] = copyCollection(*collection)
	return nil
}

// Update replaces the editable fields of a stored collection. The stored
// artwork list is copied back into collection.
func (r *MemoryCollectionRepository) Update(_ context.Context, collection *models.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.collections[collection.ID]
	if !ok {
		return ErrNotFound
	}
	collection.Normalize()
	collection.Artworks = models.Clone(old.Artworks)
	collection.CreatedAt = old.CreatedAt
	collection.UpdatedAt = time.Now()
	r.collections[collection.ID] = copyCollection(*collection)
	return nil
}

// Delete removes a collection by its ID.
func (r *MemoryCollectionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.collections[id]; !ok {
		return ErrNotFound
	}
	delete(r.collections, id)
	return nil
}

func (r *MemoryCollectionRepository) editArtworks(id string, fn func(c *models.Collection) error) (*models.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now()
	r.collections[id] = c
	out := copyCollection(c)
	return &out, nil
}

// AddArtwork prepends artworkID to the collection.
func (r *MemoryCollectionRepository) AddArtwork(_ context.Context, id, artworkID, cover string) (*models.Collection, error) {
	return r.editArtworks(id, func(c *models.Collection) error {
		return addArtwork(c, artworkID, cover)
	})
}

// RemoveArtwork drops artworkID from the collection.
func (r *MemoryCollectionRepository) RemoveArtwork(_ context.Context, id, artworkID, cover string) (*models.Collection, error) {
	return r.editArtworks(id, func(c *models.Collection) error {
		return removeArtwork(c, artworkID, cover)
	})
}
