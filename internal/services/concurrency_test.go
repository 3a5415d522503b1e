package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"arthemis/internal/logger"
	"arthemis/internal/models"
	"arthemis/internal/repositories"
	"arthemis/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// interleavedArtworks runs hook once, right after the next GetByID returns.
type interleavedArtworks struct {
	repositories.ArtworkRepository
	hook func()
}

func (r *interleavedArtworks) GetByID(ctx context.Context, id string) (*models.Artwork, error) {
	a, err := r.ArtworkRepository.GetByID(ctx, id)
	if hook := r.hook; hook != nil {
		r.hook = nil
		hook()
	}
	return a, err
}

// interleavedCollections runs hook once, right after the next GetByID returns.
type interleavedCollections struct {
	repositories.CollectionRepository
	hook func()
}

func (r *interleavedCollections) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	c, err := r.CollectionRepository.GetByID(ctx, id)
	if hook := r.hook; hook != nil {
		r.hook = nil
		hook()
	}
	return c, err
}

func TestArtworkService_EditDuringEngagementKeepsIt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	artist := f.user(t, "artist", models.RoleArtist)
	alice := f.user(t, "alice", models.RoleUser)
	bob := f.user(t, "bob", models.RoleUser)
	carol := f.user(t, "carol", models.RoleUser)
	a := f.artwork(t, artist, "forest")

	_, err := f.artworkService.Like(ctx, a.ID, alice.ID)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, f.artworks.IncrementViews(ctx, a.ID))
	}

	repo := &interleavedArtworks{ArtworkRepository: f.artworks}
	service := services.NewArtworkService(repo, f.users, f.comments, nil, nil, logger.Nop(), 1000000)
	repo.hook = func() {
		// A view, a like and a save land between the edit's load and write.
		require.NoError(t, f.artworks.IncrementViews(ctx, a.ID))
		_, err := service.Like(ctx, a.ID, bob.ID)
		require.NoError(t, err)
		_, err = service.Save(ctx, a.ID, carol.ID)
		require.NoError(t, err)
	}

	updated, err := service.Update(ctx, services.ActorOf(artist), a.ID, &services.ArtworkPatch{Title: ptr("Misty forest")})
	require.NoError(t, err)
	assert.Equal(t, "Misty forest", updated.Title)
	assert.Nil(t, repo.hook)

	stored := f.reloadArtwork(t, a.ID)
	assert.Equal(t, "Misty forest", stored.Title)
	assert.Equal(t, int64(6), stored.Views)
	assert.Equal(t, []string{bob.ID, alice.ID}, stored.Likes)
	assert.Equal(t, []string{carol.ID}, stored.Saves)
	assert.True(t, f.reloadUser(t, carol.ID).HasSaved(a.ID))
}

func TestArtworkService_ConcurrentLikes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	artist := f.user(t, "artist", models.RoleArtist)
	a := f.artwork(t, artist, "forest")

	const fans = 24
	var wg sync.WaitGroup
	for i := 0; i < fans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.artworkService.Like(ctx, a.ID, fmt.Sprintf("fan-%d", i))
			assert.NoError(t, err)
			f.artworkService.IncrementView(a.ID)
		}(i)
	}
	wg.Wait()
	f.artworkService.Wait()

	stored := f.reloadArtwork(t, a.ID)
	assert.Len(t, stored.Likes, fans)
	assert.Equal(t, int64(fans), stored.Views)
}

func TestArtworkService_RepeatedLikeRaceHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	artist := f.user(t, "artist", models.RoleArtist)
	fan := f.user(t, "fan", models.RoleUser)
	a := f.artwork(t, artist, "forest")

	var wins, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.artworkService.Like(ctx, a.ID, fan.ID)
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, services.ErrConflict):
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(15), conflicts)
	assert.Equal(t, []string{fan.ID}, f.reloadArtwork(t, a.ID).Likes)
}

func TestCollectionService_RenameDuringAddKeepsArtwork(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner", models.RoleUser)
	artist := f.user(t, "artist", models.RoleArtist)
	first := f.artwork(t, artist, "forest")
	second := f.artwork(t, artist, "river")
	c := f.collection(t, owner, "Forests", false)

	_, err := f.collectionService.AddArtwork(ctx, services.ActorOf(owner), c.ID, first.ID)
	require.NoError(t, err)

	repo := &interleavedCollections{CollectionRepository: f.collections}
	service := services.NewCollectionService(repo, f.artworks, f.users, nil, logger.Nop())
	repo.hook = func() {
		_, err := f.collectionService.AddArtwork(ctx, services.ActorOf(owner), c.ID, second.ID)
		require.NoError(t, err)
	}

	_, err = service.Update(ctx, services.ActorOf(owner), c.ID, &services.CollectionPatch{Name: ptr("Woods")})
	require.NoError(t, err)

	stored := f.reloadCollection(t, c.ID)
	assert.Equal(t, "Woods", stored.Name)
	assert.Equal(t, []string{second.ID, first.ID}, stored.Artworks)
	assert.Equal(t, first.Image, stored.CoverImage)
}
