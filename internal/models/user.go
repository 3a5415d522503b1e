package models

import "time"

// Role is the closed set of user roles consulted by the authorization gate.
type Role string

const (
	RoleUser   Role = "user"
	RoleArtist Role = "artist"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleArtist, RoleAdmin:
		return true
	}
	return false
}

// User represents an account of the gallery.
type User struct {
	ID            string   `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Username      string   `json:"username" gorm:"uniqueIndex;type:varchar(100)" bson:"username"`
	Email         string   `json:"email" gorm:"uniqueIndex;type:varchar(255)" bson:"email"`
	Password      string   `json:"-" gorm:"type:varchar(255)" bson:"password"` // bcrypt hash
	Role          Role     `json:"role" gorm:"type:varchar(20);default:user" bson:"role"`
	Avatar        string   `json:"avatar" bson:"avatar"`
	Bio           string   `json:"bio,omitempty" bson:"bio"`
	SavedArtworks []string `json:"savedArtworks" gorm:"type:text;serializer:json" bson:"saved_artworks"`
	Collections   []string `json:"collections" gorm:"type:text;serializer:json" bson:"collections"`

	ResetPasswordToken  string     `json:"-" gorm:"index;type:varchar(64)" bson:"reset_password_token,omitempty"`
	ResetPasswordExpire *time.Time `json:"-" bson:"reset_password_expire,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// DefaultAvatar is assigned to users registering without one.
const DefaultAvatar = "default-avatar.jpg"

// Summary returns the public projection of the user used when populating references.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// HasSaved reports whether artworkID is in the user's saved list.
func (u *User) HasSaved(artworkID string) bool {
	return Contains(u.SavedArtworks, artworkID)
}

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}
