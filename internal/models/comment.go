package models

import "time"

// Comment is a user's remark on an artwork. Comments reference their artwork
// and are never embedded in it.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID    string    `json:"userId" gorm:"index;type:varchar(36)" bson:"user_id"`
	ArtworkID string    `json:"artworkId" gorm:"index;type:varchar(36)" bson:"artwork_id"`
	Text      string    `json:"text" bson:"text" validate:"required,max=1000"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// CommentDetail is a comment with its author populated.
type CommentDetail struct {
	Comment
	User *UserSummary `json:"user,omitempty"`
}
