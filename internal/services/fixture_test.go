package services_test

import (
	"context"
	"testing"
	"time"

	"arthemis/internal/logger"
	"arthemis/internal/models"
	"arthemis/internal/repositories"
	"arthemis/internal/services"

	"github.com/stretchr/testify/require"
)

// fixture wires the services over in-memory repositories.
type fixture struct {
	users       *repositories.MemoryUserRepository
	artworks    *repositories.MemoryArtworkRepository
	collections *repositories.MemoryCollectionRepository
	comments    *repositories.MemoryCommentRepository

	artworkService    *services.ArtworkService
	collectionService *services.CollectionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil, nil)
}

func newFixtureWith(t *testing.T, images services.ImageStore, events services.EventPublisher) *fixture {
	t.Helper()
	f := &fixture{
		users:       repositories.NewMemoryUserRepository(),
		artworks:    repositories.NewMemoryArtworkRepository(),
		collections: repositories.NewMemoryCollectionRepository(),
		comments:    repositories.NewMemoryCommentRepository(),
	}
	f.artworkService = services.NewArtworkService(f.artworks, f.users, f.comments, images, events, logger.Nop(), 1000000)
	f.collectionService = services.NewCollectionService(f.collections, f.artworks, f.users, events, logger.Nop())
	t.Cleanup(f.artworkService.Wait)
	return f
}

func (f *fixture) user(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
		Avatar:   models.DefaultAvatar,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) artwork(t *testing.T, artist *models.User, title string) *models.Artwork {
	t.Helper()
	a := &models.Artwork{
		Title:       title,
		Description: "A study of " + title,
		Image:       "https://cdn.example.com/" + title + ".jpg",
		ArtistID:    artist.ID,
		Medium:      []string{"oil"},
		Year:        2001,
		Status:      models.StatusPublished,
	}
	require.NoError(t, f.artworks.Create(context.Background(), a))
	return a
}

func (f *fixture) collection(t *testing.T, owner *models.User, name string, private bool) *models.Collection {
	t.Helper()
	c, err := f.collectionService.Create(context.Background(), services.ActorOf(owner), &models.Collection{
		Name:        name,
		Description: "Works about " + name,
		IsPrivate:   private,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) reloadArtwork(t *testing.T, id string) *models.Artwork {
	t.Helper()
	a, err := f.artworks.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (f *fixture) reloadUser(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) reloadCollection(t *testing.T, id string) *models.Collection {
	t.Helper()
	c, err := f.collections.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T {
	return &v
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
