package repositories

import (
	"context"
	"fmt"
	"time"

	"arthemis/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.SavedArtworks = models.Clone(user.SavedArtworks)
	user.Collections = models.Clone(user.Collections)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", gormErr(err))
	}
	return nil
}

func (r *GORMUserRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, gormErr(err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := r.first(ctx, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return user, nil
}

// GetByIDs retrieves the known users in the order of ids.
func (r *GORMUserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return orderUsers(ids, users), nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := r.first(ctx, "username = ?", username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.first(ctx, "email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return user, nil
}

// GetByResetToken retrieves the user holding an unexpired reset token hash.
func (r *GORMUserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	user, err := r.first(ctx, "reset_password_token = ? AND reset_password_expire > ?", tokenHash, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}
	return user, nil
}

// Update writes the account fields of the user. The saved artworks and
// collections keep their stored values.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).
		Select("*").Omit("id", "created_at", "saved_artworks", "collections").Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", gormErr(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found for update: %w", user.ID, ErrNotFound)
	}
	return nil
}

// mutate applies fn to the stored user inside a transaction and writes back
// the listed columns.
func (r *GORMUserRepository) mutate(ctx context.Context, userID string, fn func(u *models.User), columns ...string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := forUpdate(tx).Where("id = ?", userID).First(&user).Error; err != nil {
			return fmt.Errorf("failed to load user %s: %w", userID, gormErr(err))
		}
		fn(&user)
		user.UpdatedAt = time.Now()
		columns = append(columns, "updated_at")
		if err := tx.Model(&user).Select(columns).Updates(&user).Error; err != nil {
			return fmt.Errorf("failed to update user %s: %w", userID, err)
		}
		return nil
	})
}

// PrependSavedArtwork puts artworkID at the front of the saved list.
func (r *GORMUserRepository) PrependSavedArtwork(ctx context.Context, userID, artworkID string) error {
	return r.mutate(ctx, userID, func(u *models.User) {
		u.SavedArtworks = models.Prepend(u.SavedArtworks, artworkID)
	}, "saved_artworks")
}

// RemoveSavedArtwork drops artworkID from the saved list.
func (r *GORMUserRepository) RemoveSavedArtwork(ctx context.Context, userID, artworkID string) error {
	return r.mutate(ctx, userID, func(u *models.User) {
		u.SavedArtworks = removeAll(u.SavedArtworks, artworkID)
	}, "saved_artworks")
}

// AddCollection appends collectionID unless already present.
func (r *GORMUserRepository) AddCollection(ctx context.Context, userID, collectionID string) error {
	return r.mutate(ctx, userID, func(u *models.User) {
		if !models.Contains(u.Collections, collectionID) {
			u.Collections = append(models.Clone(u.Collections), collectionID)
		}
	}, "collections")
}

// RemoveCollection drops collectionID from the collection list.
func (r *GORMUserRepository) RemoveCollection(ctx context.Context, userID, collectionID string) error {
	return r.mutate(ctx, userID, func(u *models.User) {
		u.Collections = removeAll(u.Collections, collectionID)
	}, "collections")
}
