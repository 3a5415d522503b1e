package services_test

import (
	"context"
	"io"

	"arthemis/internal/models"
	"arthemis/internal/repositories"
	"arthemis/pkg/genai"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) PrependSavedArtwork(ctx context.Context, userID, artworkID string) error {
	args := m.Called(ctx, userID, artworkID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveSavedArtwork(ctx context.Context, userID, artworkID string) error {
	args := m.Called(ctx, userID, artworkID)
	return args.Error(0)
}

func (m *MockUserRepository) AddCollection(ctx context.Context, userID, collectionID string) error {
	args := m.Called(ctx, userID, collectionID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveCollection(ctx context.Context, userID, collectionID string) error {
	args := m.Called(ctx, userID, collectionID)
	return args.Error(0)
}

// MockArtworkRepository is a mock implementation of repositories.ArtworkRepository
type MockArtworkRepository struct {
	mock.Mock
}

func (m *MockArtworkRepository) Search(ctx context.Context, filter repositories.ArtworkFilter, sort repositories.ArtworkSort, skip, limit int) ([]models.Artwork, int64, error) {
	args := m.Called(ctx, filter, sort, skip, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Artwork), args.Get(1).(int64), args.Error(2)
}

func (m *MockArtworkRepository) GetByID(ctx context.Context, id string) (*models.Artwork, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artwork), args.Error(1)
}

func (m *MockArtworkRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Artwork, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Artwork), args.Error(1)
}

func (m *MockArtworkRepository) Create(ctx context.Context, artwork *models.Artwork) error {
	args := m.Called(ctx, artwork)
	return args.Error(0)
}

func (m *MockArtworkRepository) Update(ctx context.Context, artwork *models.Artwork) error {
	args := m.Called(ctx, artwork)
	return args.Error(0)
}

func (m *MockArtworkRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockArtworkRepository) IncrementViews(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockArtworkRepository) PrependUser(ctx context.Context, id string, list repositories.ArtworkList, userID string) ([]string, error) {
	args := m.Called(ctx, id, list, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockArtworkRepository) RemoveUser(ctx context.Context, id string, list repositories.ArtworkList, userID string) ([]string, error) {
	args := m.Called(ctx, id, list, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockCollectionRepository is a mock implementation of repositories.CollectionRepository
type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) Find(ctx context.Context, filter repositories.CollectionFilter) ([]models.Collection, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	args := m.Called(ctx, collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	args := m.Called(ctx, collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCollectionRepository) AddArtwork(ctx context.Context, id, artworkID, cover string) (*models.Collection, error) {
	args := m.Called(ctx, id, artworkID, cover)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) RemoveArtwork(ctx context.Context, id, artworkID, cover string) (*models.Collection, error) {
	args := m.Called(ctx, id, artworkID, cover)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

// MockCommentRepository is a mock implementation of repositories.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByArtwork(ctx context.Context, artworkID string) ([]models.Comment, error) {
	args := m.Called(ctx, artworkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) CountByArtwork(ctx context.Context, artworkID string) (int64, error) {
	args := m.Called(ctx, artworkID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) DeleteByArtwork(ctx context.Context, artworkID string) (int64, error) {
	args := m.Called(ctx, artworkID)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher records published events.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

// MockImageStore is a mock implementation of services.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, artworkID, filename, contentType string, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, artworkID, filename, contentType, body, size)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockImageStore) Owns(url string) bool {
	args := m.Called(url)
	return args.Bool(0)
}

// MockGenerator is a mock implementation of services.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, prompt string, schema genai.Schema, out interface{}) error {
	args := m.Called(ctx, prompt, schema, out)
	return args.Error(0)
}

func (m *MockGenerator) GenerateGrounded(ctx context.Context, prompt string) (*genai.GroundedAnswer, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GroundedAnswer), args.Error(1)
}
