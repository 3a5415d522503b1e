package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"arthemis/internal/metrics"
	"arthemis/internal/models"
	"arthemis/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ArtworkQuery is a filtered, sorted page request over artworks.
type ArtworkQuery struct {
	Filter repositories.ArtworkFilter
	Sort   repositories.ArtworkSort
	Page   PageRequest
}

// ArtworkPage is one page of search results.
type ArtworkPage struct {
	Items      []models.ArtworkDetail
	Total      int64
	Pagination Pagination
}

// ArtworkPatch holds the fields a PUT may change. Nil fields are left as is.
type ArtworkPatch struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Image       *string               `json:"image"`
	Medium      *[]string             `json:"medium"`
	Style       *[]string             `json:"style"`
	Year        *int                  `json:"year"`
	Dimensions  *models.Dimensions    `json:"dimensions"`
	Price       *float64              `json:"price"`
	IsForSale   *bool                 `json:"isForSale"`
	IsNFS       *bool                 `json:"isNFS"`
	Tags        *[]string             `json:"tags"`
	Status      *models.ArtworkStatus `json:"status"`
}

func (p *ArtworkPatch) apply(a *models.Artwork) {
	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Image != nil {
		a.Image = *p.Image
	}
	if p.Medium != nil {
		a.Medium = *p.Medium
	}
	if p.Style != nil {
		a.Style = *p.Style
	}
	if p.Year != nil {
		a.Year = *p.Year
	}
	if p.Dimensions != nil {
		a.Dimensions = *p.Dimensions
	}
	if p.Price != nil {
		a.Price = *p.Price
	}
	if p.IsForSale != nil {
		a.IsForSale = *p.IsForSale
	}
	if p.IsNFS != nil {
		a.IsNFS = *p.IsNFS
	}
	if p.Tags != nil {
		a.Tags = *p.Tags
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}

// ImageUpload is a file received for an artwork.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ArtworkService handles artworks, engagement and comments.
type ArtworkService struct {
	artworkRepo repositories.ArtworkRepository
	userRepo    repositories.UserRepository
	commentRepo repositories.CommentRepository
	images      ImageStore
	events      EventPublisher
	log         *zap.SugaredLogger
	validate    *validator.Validate

	maxUpload int64
	views     sync.WaitGroup
}

// NewArtworkService creates a new ArtworkService. images and events may be nil.
func NewArtworkService(
	artworkRepo repositories.ArtworkRepository,
	userRepo repositories.UserRepository,
	commentRepo repositories.CommentRepository,
	images ImageStore,
	events EventPublisher,
	log *zap.SugaredLogger,
	maxUpload int64,
) *ArtworkService {
	return &ArtworkService{
		artworkRepo: artworkRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		images:      images,
		events:      events,
		log:         log,
		validate:    NewValidator(),
		maxUpload:   maxUpload,
	}
}

func artworkNotFound(id string) string {
	return fmt.Sprintf("Artwork not found with id of %s", id)
}

func (s *ArtworkService) load(ctx context.Context, id string) (*models.Artwork, error) {
	a, err := s.artworkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, artworkNotFound(id))
	}
	return a, nil
}

// summaries loads the public projections of ids, keyed by id.
func (s *ArtworkService) summaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, internal(err)
	}
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}

func (s *ArtworkService) withArtists(ctx context.Context, artworks []models.Artwork) ([]models.ArtworkDetail, error) {
	ids := make([]string, 0, len(artworks))
	for _, a := range artworks {
		if !models.Contains(ids, a.ArtistID) {
			ids = append(ids, a.ArtistID)
		}
	}
	artists, err := s.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.ArtworkDetail, 0, len(artworks))
	for _, a := range artworks {
		d := models.ArtworkDetail{Artwork: a}
		if u, ok := artists[a.ArtistID]; ok {
			d.Artist = &u
		}
		out = append(out, d)
	}
	return out, nil
}

// Search returns one page of artworks matching q, each with its artist.
func (s *ArtworkService) Search(ctx context.Context, q ArtworkQuery) (*ArtworkPage, error) {
	page := q.Page.Normalize()
	artworks, total, err := s.artworkRepo.Search(ctx, q.Filter, q.Sort, page.Skip(), page.Limit)
	if err != nil {
		return nil, internal(err)
	}
	items, err := s.withArtists(ctx, artworks)
	if err != nil {
		return nil, err
	}
	return &ArtworkPage{Items: items, Total: total, Pagination: Paginate(page, total)}, nil
}

// Get returns an artwork with its artist and comments, and counts a view.
func (s *ArtworkService) Get(ctx context.Context, id string) (*models.ArtworkDetail, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.withArtists(ctx, []models.Artwork{*a})
	if err != nil {
		return nil, err
	}
	detail := details[0]
	if detail.Comments, err = s.Comments(ctx, id); err != nil {
		return nil, err
	}

	s.IncrementView(id)
	detail.Views++
	return &detail, nil
}

// IncrementView adds a view in the background; the caller does not wait.
func (s *ArtworkService) IncrementView(id string) {
	s.views.Add(1)
	go func() {
		defer s.views.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.artworkRepo.IncrementViews(ctx, id); err != nil {
			s.log.Warnw("failed to increment views", "artwork", id, "error", err)
		}
	}()
}

// Wait blocks until pending view increments have finished.
func (s *ArtworkService) Wait() {
	s.views.Wait()
}

// Create stores a new artwork owned by the actor, who must be an artist or admin.
func (s *ArtworkService) Create(ctx context.Context, actor Actor, input *models.Artwork) (*models.Artwork, error) {
	if err := actor.RequireRole("add an artwork", models.RoleArtist, models.RoleAdmin); err != nil {
		return nil, err
	}

	a := *input
	a.ID = ""
	a.ArtistID = actor.ID
	a.Title = strings.TrimSpace(a.Title)
	a.Likes, a.Saves, a.Views = nil, nil, 0
	a.CreatedAt, a.UpdatedAt = time.Time{}, time.Time{}
	a.Normalize()

	if strings.TrimSpace(a.Description) == "" {
		return nil, newError(KindValidation, "Description is required")
	}
	if err := s.validate.Struct(&a); err != nil {
		return nil, validationError(err)
	}
	if err := s.artworkRepo.Create(ctx, &a); err != nil {
		return nil, internal(err)
	}

	publishEvent(ctx, s.events, s.log, EventArtworkCreated, map[string]interface{}{
		"artworkId": a.ID,
		"artistId":  a.ArtistID,
		"title":     a.Title,
	})
	return &a, nil
}

// Update applies patch to an artwork owned by the actor, or by anyone for admins.
func (s *ArtworkService) Update(ctx context.Context, actor Actor, id string, patch *ArtworkPatch) (*models.Artwork, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.CanMutate(a.ArtistID, "update", "artwork"); err != nil {
		return nil, err
	}

	patch.apply(a)
	a.Normalize()
	if err := s.validate.Struct(a); err != nil {
		return nil, validationError(err)
	}
	if err := s.artworkRepo.Update(ctx, a); err != nil {
		return nil, lookupErr(err, artworkNotFound(id))
	}
	return a, nil
}

// Delete removes an artwork, its comments and its saved references. The CDN
// image is removed best-effort.
func (s *ArtworkService) Delete(ctx context.Context, actor Actor, id string) error {
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.CanMutate(a.ArtistID, "delete", "artwork"); err != nil {
		return err
	}

	n, err := s.commentRepo.DeleteByArtwork(ctx, id)
	if err != nil {
		return internal(fmt.Errorf("failed to delete comments of artwork %s: %w", id, err))
	}

	for _, userID := range a.Saves {
		if err := s.userRepo.RemoveSavedArtwork(ctx, userID, id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			s.log.Warnw("failed to drop saved reference", "artwork", id, "user", userID, "error", err)
		}
	}

	if s.images != nil && a.Image != "" && s.images.Owns(a.Image) {
		if err := s.images.Delete(ctx, a.Image); err != nil {
			s.log.Warnw("failed to delete artwork image", "artwork", id, "image", a.Image, "error", err)
		}
	}

	if err := s.artworkRepo.Delete(ctx, id); err != nil {
		return lookupErr(err, artworkNotFound(id))
	}
	s.log.Infow("artwork deleted", "artwork", id, "comments", n)

	publishEvent(ctx, s.events, s.log, EventArtworkDeleted, map[string]interface{}{
		"artworkId": id,
		"artistId":  a.ArtistID,
	})
	return nil
}

// listErr maps a failed like or save write. duplicate and missing are the
// messages for a user already present or absent.
func listErr(err error, id, duplicate, missing string) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return newError(KindConflict, duplicate)
	case errors.Is(err, repositories.ErrNotInList):
		return newError(KindInvalidState, missing)
	}
	return lookupErr(err, artworkNotFound(id))
}

// Like prepends userID to the artwork's likes. Likes have no user-side mirror.
func (s *ArtworkService) Like(ctx context.Context, id, userID string) ([]string, error) {
	likes, err := s.artworkRepo.PrependUser(ctx, id, repositories.Likes, userID)
	if err != nil {
		return nil, listErr(err, id, "Artwork already liked", "Artwork has not yet been liked")
	}
	metrics.RecordEngagement("like")
	return likes, nil
}

// Unlike removes userID from the artwork's likes.
func (s *ArtworkService) Unlike(ctx context.Context, id, userID string) ([]string, error) {
	likes, err := s.artworkRepo.RemoveUser(ctx, id, repositories.Likes, userID)
	if err != nil {
		return nil, listErr(err, id, "Artwork already liked", "Artwork has not yet been liked")
	}
	metrics.RecordEngagement("unlike")
	return likes, nil
}

// Save records the save on both the artwork and the user. The artwork write
// goes first and is not rolled back if the user write fails.
func (s *ArtworkService) Save(ctx context.Context, id, userID string) ([]string, error) {
	saves, err := s.artworkRepo.PrependUser(ctx, id, repositories.Saves, userID)
	if err != nil {
		return nil, listErr(err, id, "Artwork already saved", "Artwork has not been saved")
	}
	if err := s.userRepo.PrependSavedArtwork(ctx, userID, id); err != nil {
		return nil, internal(fmt.Errorf("failed to save artwork %s for user %s: %w", id, userID, err))
	}
	metrics.RecordEngagement("save")
	return saves, nil
}

// Unsave removes the save from both sides. Both writes run concurrently and
// the first failure is returned once both have settled.
func (s *ArtworkService) Unsave(ctx context.Context, id, userID string) ([]string, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.Contains(a.Saves, userID) {
		return nil, newError(KindInvalidState, "Artwork has not been saved")
	}

	var saves []string
	var g errgroup.Group
	g.Go(func() error {
		var err error
		saves, err = s.artworkRepo.RemoveUser(ctx, id, repositories.Saves, userID)
		return err
	})
	g.Go(func() error {
		return s.userRepo.RemoveSavedArtwork(ctx, userID, id)
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrNotInList) {
			return nil, newError(KindInvalidState, "Artwork has not been saved")
		}
		return nil, internal(fmt.Errorf("failed to unsave artwork %s for user %s: %w", id, userID, err))
	}
	metrics.RecordEngagement("unsave")
	return saves, nil
}

func (s *ArtworkService) populateUsers(ctx context.Context, ids []string) ([]models.UserSummary, error) {
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, internal(err)
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out, nil
}

// Likes returns the users who liked the artwork, most recent first.
func (s *ArtworkService) Likes(ctx context.Context, id string) ([]models.UserSummary, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.populateUsers(ctx, a.Likes)
}

// Saves returns the users who saved the artwork, most recent first.
func (s *ArtworkService) Saves(ctx context.Context, id string) ([]models.UserSummary, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.populateUsers(ctx, a.Saves)
}

// Comments returns the artwork's comments with their authors, newest first.
func (s *ArtworkService) Comments(ctx context.Context, id string) ([]models.CommentDetail, error) {
	comments, err := s.commentRepo.ListByArtwork(ctx, id)
	if err != nil {
		return nil, internal(err)
	}
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		if !models.Contains(ids, c.UserID) {
			ids = append(ids, c.UserID)
		}
	}
	authors, err := s.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.CommentDetail, 0, len(comments))
	for _, c := range comments {
		d := models.CommentDetail{Comment: c}
		if u, ok := authors[c.UserID]; ok {
			d.User = &u
		}
		out = append(out, d)
	}
	return out, nil
}

// ArtworkComments checks the artwork exists and returns its comments.
func (s *ArtworkService) ArtworkComments(ctx context.Context, id string) ([]models.CommentDetail, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.Comments(ctx, id)
}

// AddComment stores a comment by the actor on the artwork.
func (s *ArtworkService) AddComment(ctx context.Context, actor Actor, id, text string) (*models.CommentDetail, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	c := &models.Comment{UserID: actor.ID, ArtworkID: id, Text: strings.TrimSpace(text)}
	if err := s.validate.Struct(c); err != nil {
		return nil, validationError(err)
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, internal(err)
	}
	d := &models.CommentDetail{Comment: *c}
	if u, err := s.userRepo.GetByID(ctx, actor.ID); err == nil {
		summary := u.Summary()
		d.User = &summary
	}
	return d, nil
}

// UploadImage replaces the artwork's image with file, hosted on the CDN.
func (s *ArtworkService) UploadImage(ctx context.Context, actor Actor, id string, file *ImageUpload) (*models.Artwork, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.CanMutate(a.ArtistID, "update", "artwork"); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, newError(KindValidation, "Please upload a file")
	}
	if !strings.HasPrefix(file.ContentType, "image") {
		return nil, newError(KindValidation, "Please upload an image file")
	}
	if file.Size > s.maxUpload {
		return nil, newError(KindValidation, "Please upload an image less than %gKB", float64(s.maxUpload)/1000)
	}
	if s.images == nil {
		return nil, newError(KindUpstream, "Image storage is not configured")
	}

	url, err := s.images.Upload(ctx, a.ID, file.Filename, file.ContentType, file.Body, file.Size)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "Image upload failed", Err: err}
	}

	old := a.Image
	a.Image = url
	if err := s.artworkRepo.Update(ctx, a); err != nil {
		return nil, lookupErr(err, artworkNotFound(id))
	}

	if old != "" && old != url && s.images.Owns(old) {
		if err := s.images.Delete(ctx, old); err != nil {
			s.log.Warnw("failed to delete previous artwork image", "artwork", id, "image", old, "error", err)
		}
	}
	return a, nil
}
