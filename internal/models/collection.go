package models

import "time"

// DefaultCoverImage is the sentinel cover of a collection without artwork.
const DefaultCoverImage = "default-collection.jpg"

// Collection is a named, ordered grouping of artworks owned by a user.
// Artworks are kept newest first.
type Collection struct {
	ID          string   `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name        string   `json:"name" gorm:"type:varchar(50)" bson:"name" validate:"required,max=50"`
	Description string   `json:"description" bson:"description" validate:"required,max=500"`
	UserID      string   `json:"userId" gorm:"index;type:varchar(36)" bson:"user_id" validate:"required"`
	Artworks    []string `json:"artworks" gorm:"type:text;serializer:json" bson:"artworks"`
	CoverImage  string   `json:"coverImage" bson:"cover_image"`
	IsPrivate   bool     `json:"isPrivate" bson:"is_private"`
	Tags        []string `json:"tags" gorm:"type:text;serializer:json" bson:"tags"`

	CreatedAt time.Time `json:"createdAt" gorm:"index" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Normalize fills the cover sentinel and replaces nil slices.
func (c *Collection) Normalize() {
	c.Artworks = Clone(c.Artworks)
	c.Tags = Clone(c.Tags)
	if c.CoverImage == "" {
		c.CoverImage = DefaultCoverImage
	}
}

// ArtworkCount is the derived number of artworks in the collection.
func (c *Collection) ArtworkCount() int {
	return len(c.Artworks)
}

// HasExplicitCover reports whether the cover was set to something other than
// the sentinel.
func (c *Collection) HasExplicitCover() bool {
	return c.CoverImage != "" && c.CoverImage != DefaultCoverImage
}

// VisibleTo reports whether viewerID may read the collection. An empty viewer
// is anonymous.
func (c *Collection) VisibleTo(viewerID string) bool {
	return !c.IsPrivate || (viewerID != "" && c.UserID == viewerID)
}

// CollectionDetail is a collection with owner and artworks populated.
type CollectionDetail struct {
	Collection
	Owner            *UserSummary     `json:"user,omitempty"`
	ArtworkSummaries []ArtworkSummary `json:"artworkItems"`
	Count            int              `json:"artworkCount"`
}
