package repositories

import (
	"context"
	"strings"

	"arthemis/internal/models"
)

// ArtworkRepository defines the interface for artwork data access.
type ArtworkRepository interface {
	Search(ctx context.Context, filter ArtworkFilter, sort ArtworkSort, skip, limit int) ([]models.Artwork, int64, error)
	GetByID(ctx context.Context, id string) (*models.Artwork, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Artwork, error)
	Create(ctx context.Context, artwork *models.Artwork) error
	// Update writes the editable fields. Views, likes and saves are only
	// changed through IncrementViews, PrependUser and RemoveUser.
	Update(ctx context.Context, artwork *models.Artwork) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	// PrependUser puts userID at the front of list and returns the new list.
	// It fails with ErrDuplicate when userID is already present.
	PrependUser(ctx context.Context, id string, list ArtworkList, userID string) ([]string, error)
	// RemoveUser drops userID from list and returns the new list. It fails
	// with ErrNotInList when userID is absent.
	RemoveUser(ctx context.Context, id string, list ArtworkList, userID string) ([]string, error)
}

// ArtworkList names a per-user list kept on an artwork. The value is both the
// column and the document field holding it.
type ArtworkList string

const (
	Likes ArtworkList = "likes"
	Saves ArtworkList = "saves"
)

func (l ArtworkList) of(a *models.Artwork) *[]string {
	if l == Saves {
		return &a.Saves
	}
	return &a.Likes
}

func prependUser(a *models.Artwork, list ArtworkList, userID string) error {
	ids := list.of(a)
	if models.Contains(*ids, userID) {
		return ErrDuplicate
	}
	*ids = models.Prepend(*ids, userID)
	return nil
}

func removeUser(a *models.Artwork, list ArtworkList, userID string) error {
	ids := list.of(a)
	out, ok := models.Remove(*ids, userID)
	if !ok {
		return ErrNotInList
	}
	*ids = out
	return nil
}

// ArtworkSort selects the ordering of search results.
type ArtworkSort int

const (
	SortNewest ArtworkSort = iota
	SortOldest
	SortPopular
)

// ParseArtworkSort maps the query value to a sort, defaulting to newest.
func ParseArtworkSort(s string) ArtworkSort {
	switch s {
	case "oldest":
		return SortOldest
	case "popular":
		return SortPopular
	default:
		return SortNewest
	}
}

func (s ArtworkSort) String() string {
	return map[ArtworkSort]string{
		SortNewest:  "newest",
		SortOldest:  "oldest",
		SortPopular: "popular",
	}[s]
}

// ArtworkFilter holds the conjunctive search criteria. Zero values are ignored.
type ArtworkFilter struct {
	Query    string
	Medium   []string
	Style    []string
	MinYear  *int
	MaxYear  *int
	ArtistID string
	Status   models.ArtworkStatus
}

// Terms splits the free-text query into lower-cased words.
func (f ArtworkFilter) Terms() []string {
	return strings.Fields(strings.ToLower(f.Query))
}

// Matches evaluates the filter in memory. A text query matches when any of
// its terms occurs in the title, description, medium, style or tags.
func (f ArtworkFilter) Matches(a *models.Artwork) bool {
	if terms := f.Terms(); len(terms) > 0 && !matchesText(a, terms) {
		return false
	}
	if len(f.Medium) > 0 && !intersects(a.Medium, f.Medium) {
		return false
	}
	if len(f.Style) > 0 && !intersects(a.Style, f.Style) {
		return false
	}
	if f.MinYear != nil && a.Year < *f.MinYear {
		return false
	}
	if f.MaxYear != nil && a.Year > *f.MaxYear {
		return false
	}
	if f.ArtistID != "" && a.ArtistID != f.ArtistID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

func matchesText(a *models.Artwork, terms []string) bool {
	fields := []string{a.Title, a.Description}
	fields = append(fields, a.Medium...)
	fields = append(fields, a.Style...)
	fields = append(fields, a.Tags...)
	haystack := strings.ToLower(strings.Join(fields, " "))
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}

func intersects(values, wanted []string) bool {
	for _, w := range wanted {
		if models.Contains(values, w) {
			return true
		}
	}
	return false
}

func orderArtworks(ids []string, artworks []models.Artwork) []models.Artwork {
	byID := make(map[string]models.Artwork, len(artworks))
	for _, a := range artworks {
		byID[a.ID] = a
	}
	out := make([]models.Artwork, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out
}
