package models

import "time"

// ArtworkStatus is the lifecycle state of an artwork.
type ArtworkStatus string

const (
	StatusDraft     ArtworkStatus = "draft"
	StatusPublished ArtworkStatus = "published"
	StatusArchived  ArtworkStatus = "archived"
)

// Dimensions of a physical work.
type Dimensions struct {
	Height float64 `json:"height,omitempty" bson:"height" validate:"gte=0"`
	Width  float64 `json:"width,omitempty" bson:"width" validate:"gte=0"`
	Depth  float64 `json:"depth,omitempty" bson:"depth" validate:"gte=0"`
	Unit   string  `json:"unit" bson:"unit" validate:"omitempty,oneof=cm in m ft"`
}

// Artwork is a work published by an artist.
type Artwork struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Title       string        `json:"title" gorm:"type:varchar(100)" bson:"title" validate:"required,max=100"`
	Description string        `json:"description" bson:"description" validate:"max=2000"`
	Image       string        `json:"image" bson:"image" validate:"required"`
	ArtistID    string        `json:"artistId" gorm:"index;type:varchar(36)" bson:"artist_id" validate:"required"`
	Medium      []string      `json:"medium" gorm:"type:text;serializer:json" bson:"medium" validate:"required,min=1,dive,required"`
	Style       []string      `json:"style" gorm:"type:text;serializer:json" bson:"style"`
	Year        int           `json:"year,omitempty" bson:"year,omitempty" validate:"omitempty,min=1000,notfuture"`
	Dimensions  Dimensions    `json:"dimensions" gorm:"embedded;embeddedPrefix:dim_" bson:"dimensions"`
	Price       float64       `json:"price,omitempty" bson:"price,omitempty" validate:"gte=0"`
	IsForSale   bool          `json:"isForSale" bson:"is_for_sale"`
	IsNFS       bool          `json:"isNFS" gorm:"column:is_nfs" bson:"is_nfs"`
	Tags        []string      `json:"tags" gorm:"type:text;serializer:json" bson:"tags"`
	Likes       []string      `json:"likes" gorm:"type:text;serializer:json" bson:"likes"`
	Saves       []string      `json:"saves" gorm:"type:text;serializer:json" bson:"saves"`
	Views       int64         `json:"views" gorm:"default:0" bson:"views"`
	Status      ArtworkStatus `json:"status" gorm:"type:varchar(20);default:draft" bson:"status" validate:"omitempty,oneof=draft published archived"`

	CreatedAt time.Time `json:"createdAt" gorm:"index" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Normalize fills defaults and replaces nil slices so that document stores
// always hold arrays.
func (a *Artwork) Normalize() {
	a.Medium = Clone(a.Medium)
	a.Style = Clone(a.Style)
	a.Tags = Clone(a.Tags)
	a.Likes = Clone(a.Likes)
	a.Saves = Clone(a.Saves)
	if a.Status == "" {
		a.Status = StatusDraft
	}
	if a.Dimensions.Unit == "" {
		a.Dimensions.Unit = "cm"
	}
}

// Summary is the reduced projection used inside collections.
func (a *Artwork) Summary() ArtworkSummary {
	return ArtworkSummary{
		ID:        a.ID,
		Title:     a.Title,
		Image:     a.Image,
		ArtistID:  a.ArtistID,
		Likes:     len(a.Likes),
		Saves:     len(a.Saves),
		CreatedAt: a.CreatedAt,
	}
}

// ArtworkDetail is an artwork with its artist populated. Comments are filled
// only on single-artwork reads.
type ArtworkDetail struct {
	Artwork
	Artist   *UserSummary    `json:"artist,omitempty"`
	Comments []CommentDetail `json:"comments,omitempty"`
}

// ArtworkSummary is the populated form of an artwork reference.
type ArtworkSummary struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Image     string       `json:"image"`
	ArtistID  string       `json:"artistId"`
	Artist    *UserSummary `json:"artist,omitempty"`
	Likes     int          `json:"likes"`
	Saves     int          `json:"saves"`
	CreatedAt time.Time    `json:"createdAt"`
}
