package repositories

import (
	"context"

	"arthemis/internal/models"
)

// UserRepository defines the interface for user data access.
//
// The saved-artwork and collection mutators touch a single user document so
// that stores with per-document atomicity can apply them without a read.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	// Update writes the account fields. Saved artworks and collections are
	// only changed through the list operations below.
	Update(ctx context.Context, user *models.User) error

	PrependSavedArtwork(ctx context.Context, userID, artworkID string) error
	RemoveSavedArtwork(ctx context.Context, userID, artworkID string) error
	AddCollection(ctx context.Context, userID, collectionID string) error
	RemoveCollection(ctx context.Context, userID, collectionID string) error
}

// orderUsers arranges users in the order of ids, dropping unknown ids.
func orderUsers(ids []string, users []models.User) []models.User {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out
}
