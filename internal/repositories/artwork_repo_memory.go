package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"arthemis/internal/models"

	"github.com/google/uuid"
)

// MemoryArtworkRepository is an in-memory implementation of ArtworkRepository.
type MemoryArtworkRepository struct {
	artworks map[string]models.Artwork
	mu       sync.RWMutex
}

// NewMemoryArtworkRepository creates a new instance of MemoryArtworkRepository.
func NewMemoryArtworkRepository() *MemoryArtworkRepository {
	return &MemoryArtworkRepository{
		artworks: make(map[string]models.Artwork),
	}
}

func copyArtwork(a models.Artwork) models.Artwork {
	a.Medium = models.Clone(a.Medium)
	a.Style = models.Clone(a.Style)
	a.Tags = models.Clone(a.Tags)
	a.Likes = models.Clone(a.Likes)
	a.Saves = models.Clone(a.Saves)
	return a
}

// Search filters, sorts and pages the stored artworks.
func (r *MemoryArtworkRepository) Search(_ context.Context, filter ArtworkFilter, order ArtworkSort, skip, limit int) ([]models.Artwork, int64, error) {
	if skip < 0 {
		return nil, 0, ErrInvalidRange
	}
	r.mu.RLock()
	matched := make([]models.Artwork, 0, len(r.artworks))
	for _, a := range r.artworks {
		if filter.Matches(&a) {
			matched = append(matched, copyArtwork(a))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch order {
		case SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortPopular:
			if a.Views != b.Views {
				return a.Views > b.Views
			}
			return a.CreatedAt.After(b.CreatedAt)
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})

	total := int64(len(matched))
	if skip >= len(matched) {
		return []models.Artwork{}, total, nil
	}
	end := len(matched)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return matched[skip:end], total, nil
}

// GetByID returns an artwork by its ID.
func (r *MemoryArtworkRepository) GetByID(_ context.Context, id string) (*models.Artwork, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.artworks[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = copyArtwork(a)
	return &a, nil
}

// GetByIDs returns the known artworks in the order of ids.
func (r *MemoryArtworkRepository) GetByIDs(_ context.Context, ids []string) ([]models.Artwork, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Artwork, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.artworks[id]; ok {
			out = append(out, copyArtwork(a))
		}
	}
	return out, nil
}

// Create adds a new artwork.
func (r *MemoryArtworkRepository) Create(_ context.Context, artwork *models.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if artwork.ID == "" {
		artwork.ID = uuid.New().String()
	}
	artwork.Normalize()
	if artwork.CreatedAt.IsZero() {
		artwork.CreatedAt = time.Now()
	}
	artwork.UpdatedAt = artwork.CreatedAt
	r.artworks[artwork.ID] = copyArtwork(*artwork)
	return nil
}

// Update replaces the editable fields of a stored artwork. The stored
// counters and engagement lists are copied back into artwork.
func (r *MemoryArtworkRepository) Update(_ context.Context, artwork *models.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.artworks[artwork.ID]
	if !ok {
		return ErrNotFound
	}
	artwork.Normalize()
	artwork.Views = old.Views
	artwork.Likes = models.Clone(old.Likes)
	artwork.Saves = models.Clone(old.Saves)
	artwork.CreatedAt = old.CreatedAt
	artwork.UpdatedAt = time.Now()
	r.artworks[artwork.ID] = copyArtwork(*artwork)
	return nil
}

// Delete removes an artwork by its ID.
func (r *MemoryArtworkRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.artworks[id]; !ok {
		return ErrNotFound
	}
	delete(r.artworks, id)
	return nil
}

// IncrementViews adds one to the artwork's view counter.
func (r *MemoryArtworkRepository) IncrementViews(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.artworks[id]
	if !ok {
		return ErrNotFound
	}
	a.Views++
	r.artworks[id] = a
	return nil
}

func (r *MemoryArtworkRepository) editList(id string, list ArtworkList, fn func(a *models.Artwork) error) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.artworks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&a); err != nil {
		return nil, err
	}
	a.UpdatedAt = time.Now()
	r.artworks[id] = a
	return models.Clone(*list.of(&a)), nil
}

// PrependUser puts userID at the front of the artwork's list.
func (r *MemoryArtworkRepository) PrependUser(_ context.Context, id string, list ArtworkList, userID string) ([]string, error) {
	return r.editList(id, list, func(a *models.Artwork) error {
		return prependUser(a, list, userID)
	})
}

// RemoveUser drops userID from the artwork's list.
func (r *MemoryArtworkRepository) RemoveUser(_ context.Context, id string, list ArtworkList, userID string) ([]string, error) {
	return r.editList(id, list, func(a *models.Artwork) error {
		return removeUser(a, list, userID)
	})
}
