package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"arthemis/internal/models"
	"arthemis/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CollectionPatch holds the fields a PUT may change. A non-empty CoverImage
// sets only the cover and ignores the other fields.
type CollectionPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	CoverImage  *string   `json:"coverImage"`
	IsPrivate   *bool     `json:"isPrivate"`
	Tags        *[]string `json:"tags"`
}

// CollectionService keeps collections and their owner references consistent.
type CollectionService struct {
	collectionRepo repositories.CollectionRepository
	artworkRepo    repositories.ArtworkRepository
	userRepo       repositories.UserRepository
	events         EventPublisher
	log            *zap.SugaredLogger
	validate       *validator.Validate
}

// NewCollectionService creates a new CollectionService. events may be nil.
func NewCollectionService(
	collectionRepo repositories.CollectionRepository,
	artworkRepo repositories.ArtworkRepository,
	userRepo repositories.UserRepository,
	events EventPublisher,
	log *zap.SugaredLogger,
) *CollectionService {
	return &CollectionService{
		collectionRepo: collectionRepo,
		artworkRepo:    artworkRepo,
		userRepo:       userRepo,
		events:         events,
		log:            log,
		validate:       NewValidator(),
	}
}

func collectionNotFound(id string) string {
	return fmt.Sprintf("Collection not found with id of %s", id)
}

func (s *CollectionService) load(ctx context.Context, id string) (*models.Collection, error) {
	c, err := s.collectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, collectionNotFound(id))
	}
	return c, nil
}

func (s *CollectionService) checkVisible(c *models.Collection, viewerID string) error {
	if !c.VisibleTo(viewerID) {
		return newError(KindUnauthorized, "Not authorized to access this collection")
	}
	return nil
}

// save persists c and then ensures the owner's back-reference.
func (s *CollectionService) save(ctx context.Context, c *models.Collection, create bool) error {
	var err error
	if create {
		err = s.collectionRepo.Create(ctx, c)
	} else {
		err = s.collectionRepo.Update(ctx, c)
	}
	if err != nil {
		return lookupErr(err, collectionNotFound(c.ID))
	}
	s.link(ctx, c)
	return nil
}

// link adds c to its owner's collections. A failure is logged, not returned.
func (s *CollectionService) link(ctx context.Context, c *models.Collection) {
	if err := s.userRepo.AddCollection(ctx, c.UserID, c.ID); err != nil {
		s.log.Errorw("failed to link collection to owner", "collection", c.ID, "user", c.UserID, "error", err)
	}
}

// artworksErr maps a failed artwork list write of collection id.
func artworksErr(err error, id string) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return newError(KindConflict, "Artwork already exists in this collection")
	case errors.Is(err, repositories.ErrNotInList):
		return newError(KindInvalidState, "Artwork is not in this collection")
	}
	return lookupErr(err, collectionNotFound(id))
}

// List returns the collections visible to viewerID, newest first. ownerID
// narrows the listing to one owner.
func (s *CollectionService) List(ctx context.Context, viewerID, ownerID string) ([]models.CollectionDetail, error) {
	collections, err := s.collectionRepo.Find(ctx, repositories.CollectionFilter{UserID: ownerID, ViewerID: viewerID})
	if err != nil {
		return nil, internal(err)
	}
	return s.populate(ctx, collections, false)
}

// Get returns a collection with owner and artworks populated.
func (s *CollectionService) Get(ctx context.Context, viewerID, id string) (*models.CollectionDetail, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(c, viewerID); err != nil {
		return nil, err
	}
	details, err := s.populate(ctx, []models.Collection{*c}, true)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// Artworks returns the artworks of a visible collection in list order.
func (s *CollectionService) Artworks(ctx context.Context, viewerID, id string) ([]models.ArtworkSummary, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(c, viewerID); err != nil {
		return nil, err
	}
	details, err := s.populate(ctx, []models.Collection{*c}, true)
	if err != nil {
		return nil, err
	}
	return details[0].ArtworkSummaries, nil
}

// populate resolves owners and artwork summaries. Artwork ids that no longer
// resolve are skipped. withArtists also resolves the artist of every artwork.
func (s *CollectionService) populate(ctx context.Context, collections []models.Collection, withArtists bool) ([]models.CollectionDetail, error) {
	var userIDs, artworkIDs []string
	for _, c := range collections {
		if !models.Contains(userIDs, c.UserID) {
			userIDs = append(userIDs, c.UserID)
		}
		for _, id := range c.Artworks {
			if !models.Contains(artworkIDs, id) {
				artworkIDs = append(artworkIDs, id)
			}
		}
	}

	artworks, err := s.artworkRepo.GetByIDs(ctx, artworkIDs)
	if err != nil {
		return nil, internal(err)
	}
	byID := make(map[string]models.Artwork, len(artworks))
	for _, a := range artworks {
		byID[a.ID] = a
		if withArtists && !models.Contains(userIDs, a.ArtistID) {
			userIDs = append(userIDs, a.ArtistID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, internal(err)
	}
	people := make(map[string]models.UserSummary, len(users))
	for i := range users {
		people[users[i].ID] = users[i].Summary()
	}

	out := make([]models.CollectionDetail, 0, len(collections))
	for _, c := range collections {
		d := models.CollectionDetail{
			Collection:       c,
			ArtworkSummaries: make([]models.ArtworkSummary, 0, len(c.Artworks)),
			Count:            c.ArtworkCount(),
		}
		if u, ok := people[c.UserID]; ok {
			d.Owner = &u
		}
		for _, id := range c.Artworks {
			a, ok := byID[id]
			if !ok {
				continue
			}
			summary := a.Summary()
			if u, ok := people[a.ArtistID]; ok && withArtists {
				summary.Artist = &u
			}
			d.ArtworkSummaries = append(d.ArtworkSummaries, summary)
		}
		out = append(out, d)
	}
	return out, nil
}

// Create stores a new collection owned by the actor.
func (s *CollectionService) Create(ctx context.Context, actor Actor, input *models.Collection) (*models.Collection, error) {
	c := &models.Collection{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		UserID:      actor.ID,
		CoverImage:  input.CoverImage,
		IsPrivate:   input.IsPrivate,
		Tags:        input.Tags,
	}
	c.Normalize()
	if err := s.validate.Struct(c); err != nil {
		return nil, validationError(err)
	}
	if err := s.save(ctx, c, true); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.events, s.log, EventCollectionCreated, map[string]interface{}{
		"collectionId": c.ID,
		"userId":       c.UserID,
	})
	return c, nil
}

// Update patches a collection owned by the actor, or by anyone for admins.
func (s *CollectionService) Update(ctx context.Context, actor Actor, id string, patch *CollectionPatch) (*models.Collection, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.CanMutate(c.UserID, "update", "collection"); err != nil {
		return nil, err
	}

	if patch.CoverImage != nil && *patch.CoverImage != "" {
		c.CoverImage = *patch.CoverImage
	} else {
		if patch.Name != nil {
			c.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			c.Description = *patch.Description
		}
		if patch.IsPrivate != nil {
			c.IsPrivate = *patch.IsPrivate
		}
		if patch.Tags != nil {
			c.Tags = *patch.Tags
		}
	}

	c.Normalize()
	if err := s.validate.Struct(c); err != nil {
		return nil, validationError(err)
	}
	if err := s.save(ctx, c, false); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a collection after unlinking it from its owner. A failed
// unlink aborts the delete.
func (s *CollectionService) Delete(ctx context.Context, actor Actor, id string) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.CanMutate(c.UserID, "delete", "collection"); err != nil {
		return err
	}

	if err := s.userRepo.RemoveCollection(ctx, c.UserID, c.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return internal(fmt.Errorf("failed to unlink collection %s from owner: %w", id, err))
	}
	if err := s.collectionRepo.Delete(ctx, id); err != nil {
		return lookupErr(err, collectionNotFound(id))
	}

	publishEvent(ctx, s.events, s.log, EventCollectionDeleted, map[string]interface{}{
		"collectionId": id,
		"userId":       c.UserID,
	})
	return nil
}

// AddArtwork prepends an artwork to a collection owned by the actor. Admins
// get no override. The first artwork of a collection without an explicit
// cover becomes its cover.
func (s *CollectionService) AddArtwork(ctx context.Context, actor Actor, collectionID, artworkID string) (*models.Collection, error) {
	c, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	a, err := s.artworkRepo.GetByID(ctx, artworkID)
	if err != nil {
		return nil, lookupErr(err, artworkNotFound(artworkID))
	}
	if err := actor.RequireOwner(c.UserID, "update", "collection"); err != nil {
		return nil, err
	}
	if models.Contains(c.Artworks, artworkID) {
		return nil, newError(KindConflict, "Artwork already exists in this collection")
	}

	c, err = s.collectionRepo.AddArtwork(ctx, collectionID, artworkID, a.Image)
	if err != nil {
		return nil, artworksErr(err, collectionID)
	}
	s.link(ctx, c)
	return c, nil
}

// RemoveArtwork removes an artwork from a collection owned by the actor.
// Removing the last artwork resets a cover showing that artwork. A cover left
// behind while other artworks remain is kept.
func (s *CollectionService) RemoveArtwork(ctx context.Context, actor Actor, collectionID, artworkID string) (*models.Collection, error) {
	c, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	a, err := s.artworkRepo.GetByID(ctx, artworkID)
	switch {
	case errors.Is(err, repositories.ErrNotFound) && models.Contains(c.Artworks, artworkID):
		// dangling reference to a deleted artwork; allow removing it
		a = nil
	case err != nil:
		return nil, lookupErr(err, artworkNotFound(artworkID))
	}
	if err := actor.RequireOwner(c.UserID, "update", "collection"); err != nil {
		return nil, err
	}

	if !models.Contains(c.Artworks, artworkID) {
		return nil, newError(KindInvalidState, "Artwork is not in this collection")
	}

	cover := ""
	if a != nil {
		cover = a.Image
	}
	c, err = s.collectionRepo.RemoveArtwork(ctx, collectionID, artworkID, cover)
	if err != nil {
		return nil, artworksErr(err, collectionID)
	}
	s.link(ctx, c)
	return c, nil
}
