package repositories

import (
	"context"
	"sync"
	"time"

	"arthemis/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

func copyUser(u models.User) models.User {
	u.SavedArtworks = models.Clone(u.SavedArtworks)
	u.Collections = models.Clone(u.Collections)
	return u
}

// Create adds a new user, rejecting taken usernames and emails.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	user.SavedArtworks = models.Clone(user.SavedArtworks)
	user.Collections = models.Clone(user.Collections)
	r.users[user.ID] = copyUser(*user)
	return nil
}

// GetByID returns a user by its ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = copyUser(u)
	return &u, nil
}

// GetByIDs returns the known users in the order of ids.
func (r *MemoryUserRepository) GetByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (r *MemoryUserRepository) findOne(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			u = copyUser(u)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// GetByUsername returns a user by username.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findOne(func(u models.User) bool { return u.Username == username })
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findOne(func(u models.User) bool { return u.Email == email })
}

// GetByResetToken returns the user holding an unexpired reset token hash.
func (r *MemoryUserRepository) GetByResetToken(_ context.Context, tokenHash string) (*models.User, error) {
	now := time.Now()
	return r.findOne(func(u models.User) bool {
		return tokenHash != "" && u.ResetPasswordToken == tokenHash &&
			u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now)
	})
}

// Update replaces a stored user.
func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, u := range r.users {
		if id != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return ErrDuplicate
		}
	}
	user.SavedArtworks = models.Clone(old.SavedArtworks)
	user.Collections = models.Clone(old.Collections)
	user.CreatedAt = old.CreatedAt
	user.UpdatedAt = time.Now()
	r.users[user.ID] = copyUser(*user)
	return nil
}

func (r *MemoryUserRepository) mutate(userID string, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	u = copyUser(u)
	fn(&u)
	u.UpdatedAt = time.Now()
	r.users[userID] = u
	return nil
}

// PrependSavedArtwork puts artworkID at the front of the saved list.
func (r *MemoryUserRepository) PrependSavedArtwork(_ context.Context, userID, artworkID string) error {
	return r.mutate(userID, func(u *models.User) {
		u.SavedArtworks = models.Prepend(u.SavedArtworks, artworkID)
	})
}

// RemoveSavedArtwork drops artworkID from the saved list.
func (r *MemoryUserRepository) RemoveSavedArtwork(_ context.Context, userID, artworkID string) error {
	return r.mutate(userID, func(u *models.User) {
		u.SavedArtworks = removeAll(u.SavedArtworks, artworkID)
	})
}

// AddCollection appends collectionID unless already present.
func (r *MemoryUserRepository) AddCollection(_ context.Context, userID, collectionID string) error {
	return r.mutate(userID, func(u *models.User) {
		if !models.Contains(u.Collections, collectionID) {
			u.Collections = append(u.Collections, collectionID)
		}
	})
}

// RemoveCollection drops collectionID from the collection list.
func (r *MemoryUserRepository) RemoveCollection(_ context.Context, userID, collectionID string) error {
	return r.mutate(userID, func(u *models.User) {
		u.Collections = removeAll(u.Collections, collectionID)
	})
}

// removeAll mirrors a document-store $pull, dropping every occurrence.
func removeAll(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
