package repositories

import (
	"context"

	"arthemis/internal/models"
)

// CollectionRepository defines the interface for collection data access.
type CollectionRepository interface {
	Find(ctx context.Context, filter CollectionFilter) ([]models.Collection, error)
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	Create(ctx context.Context, collection *models.Collection) error
	// Update writes the editable fields. The artwork list is only changed
	// through AddArtwork and RemoveArtwork.
	Update(ctx context.Context, collection *models.Collection) error
	Delete(ctx context.Context, id string) error
	// AddArtwork prepends artworkID and returns the stored collection. cover
	// becomes the cover of a collection whose first artwork this is, unless
	// the cover was set explicitly. It fails with ErrDuplicate when the
	// artwork is already listed.
	AddArtwork(ctx context.Context, id, artworkID, cover string) (*models.Collection, error)
	// RemoveArtwork drops artworkID and returns the stored collection.
	// Emptying the collection resets a cover equal to cover; an empty cover
	// stands for a deleted artwork and always resets it. It fails with
	// ErrNotInList when the artwork is not listed.
	RemoveArtwork(ctx context.Context, id, artworkID, cover string) (*models.Collection, error)
}

// CollectionFilter restricts a listing to an owner and to what a viewer may
// see: public collections plus the viewer's own private ones.
type CollectionFilter struct {
	UserID   string
	ViewerID string
}

// Matches evaluates the filter in memory.
func (f CollectionFilter) Matches(c *models.Collection) bool {
	if f.UserID != "" && c.UserID != f.UserID {
		return false
	}
	return c.VisibleTo(f.ViewerID)
}

func addArtwork(c *models.Collection, artworkID, cover string) error {
	if models.Contains(c.Artworks, artworkID) {
		return ErrDuplicate
	}
	c.Artworks = models.Prepend(c.Artworks, artworkID)
	if c.ArtworkCount() == 1 && !c.HasExplicitCover() && cover != "" {
		c.CoverImage = cover
	}
	return nil
}

func removeArtwork(c *models.Collection, artworkID, cover string) error {
	artworks, ok := models.Remove(c.Artworks, artworkID)
	if !ok {
		return ErrNotInList
	}
	c.Artworks = artworks
	if c.ArtworkCount() == 0 && (cover == "" || c.CoverImage == cover) {
		c.CoverImage = models.DefaultCoverImage
	}
	return nil
}
