package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"arthemis/internal/models"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMArtworkRepository is a GORM implementation of ArtworkRepository.
type GORMArtworkRepository struct {
	db *gorm.DB
}

// NewGORMArtworkRepository creates a new instance of GORMArtworkRepository.
func NewGORMArtworkRepository(db *gorm.DB) *GORMArtworkRepository {
	return &GORMArtworkRepository{
		db: db,
	}
}

var textColumns = []string{"title", "description", "medium", "style", "tags"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes the LIKE wildcards in s for use with ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// anyJSONElement builds an OR of LIKE matches against a JSON-serialized array column.
func anyJSONElement(column string, values []string) (string, []interface{}) {
	clauses := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values))
	for _, v := range values {
		element, _ := json.Marshal(v)
		clauses = append(clauses, column+` LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(string(element))+"%")
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}

func (r *GORMArtworkRepository) applyFilter(q *gorm.DB, f ArtworkFilter) *gorm.DB {
	if terms := f.Terms(); len(terms) > 0 {
		var clauses []string
		var args []interface{}
		for _, t := range terms {
			for _, col := range textColumns {
				clauses = append(clauses, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
				args = append(args, "%"+escapeLike(t)+"%")
			}
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	if len(f.Medium) > 0 {
		sql, args := anyJSONElement("medium", f.Medium)
		q = q.Where(sql, args...)
	}
	if len(f.Style) > 0 {
		sql, args := anyJSONElement("style", f.Style)
		q = q.Where(sql, args...)
	}
	if f.MinYear != nil {
		q = q.Where("year >= ?", *f.MinYear)
	}
	if f.MaxYear != nil {
		q = q.Where("year <= ?", *f.MaxYear)
	}
	if f.ArtistID != "" {
		q = q.Where("artist_id = ?", f.ArtistID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (r *GORMArtworkRepository) orderBy(q *gorm.DB, s ArtworkSort) *gorm.DB {
	switch s {
	case SortOldest:
		return q.Order("created_at ASC")
	case SortPopular:
		return q.Order("views DESC").Order("created_at DESC")
	default:
		return q.Order("created_at DESC")
	}
}

// Search returns one page of matching artworks and the total match count.
func (r *GORMArtworkRepository) Search(ctx context.Context, filter ArtworkFilter, sort ArtworkSort, skip, limit int) ([]models.Artwork, int64, error) {
	if skip < 0 {
		return nil, 0, fmt.Errorf("failed to search artworks: skip %d: %w", skip, ErrInvalidRange)
	}
	base := r.applyFilter(r.db.WithContext(ctx).Model(&models.Artwork{}), filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count artworks: %w", err)
	}

	var artworks []models.Artwork
	q := r.orderBy(base.Session(&gorm.Session{}), sort).Offset(skip)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&artworks).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search artworks: %w", err)
	}
	return artworks, total, nil
}

// GetByID retrieves a single artwork by its ID from the database.
func (r *GORMArtworkRepository) GetByID(ctx context.Context, id string) (*models.Artwork, error) {
	var artwork models.Artwork
	if err := r.db.WithContext(ctx).First(&artwork, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get artwork by ID %s: %w", id, gormErr(err))
	}
	return &artwork, nil
}

// GetByIDs retrieves the known artworks in the order of ids.
func (r *GORMArtworkRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Artwork, error) {
	if len(ids) == 0 {
		return []models.Artwork{}, nil
	}
	var artworks []models.Artwork
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&artworks).Error; err != nil {
		return nil, fmt.Errorf("failed to get artworks: %w", err)
	}
	return orderArtworks(ids, artworks), nil
}

// Create creates a new artwork in the database.
func (r *GORMArtworkRepository) Create(ctx context.Context, artwork *models.Artwork) error {
	if artwork.ID == "" {
		artwork.ID = uuid.New().String()
	}
	artwork.Normalize()
	if err := r.db.WithContext(ctx).Create(artwork).Error; err != nil {
		return fmt.Errorf("failed to create artwork: %w", gormErr(err))
	}
	return nil
}

// Update writes the editable fields of the artwork. Views, likes and saves
// keep their stored values.
func (r *GORMArtworkRepository) Update(ctx context.Context, artwork *models.Artwork) error {
	artwork.Normalize()
	res := r.db.WithContext(ctx).Model(&models.Artwork{}).Where("id = ?", artwork.ID).
		Select("*").Omit("id", "created_at", "views", string(Likes), string(Saves)).Updates(artwork)
	if res.Error != nil {
		return fmt.Errorf("failed to update artwork: %w", gormErr(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("artwork with ID %s not found for update: %w", artwork.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes an artwork by its ID from the database.
func (r *GORMArtworkRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Artwork{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete artwork: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("artwork with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// IncrementViews adds one to the artwork's view counter.
func (r *GORMArtworkRepository) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Artwork{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("artwork with ID %s not found: %w", id, ErrNotFound)
	}
	return nil
}

// editList applies fn to the locked row and writes back only the list column.
func (r *GORMArtworkRepository) editList(ctx context.Context, id string, list ArtworkList, fn func(a *models.Artwork) error) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var artwork models.Artwork
		if err := forUpdate(tx).Where("id = ?", id).First(&artwork).Error; err != nil {
			return fmt.Errorf("failed to load artwork %s: %w", id, gormErr(err))
		}
		if err := fn(&artwork); err != nil {
			return fmt.Errorf("failed to update %s of artwork %s: %w", list, id, err)
		}
		artwork.UpdatedAt = time.Now()
		if err := tx.Model(&artwork).Select(string(list), "updated_at").Updates(&artwork).Error; err != nil {
			return fmt.Errorf("failed to update %s of artwork %s: %w", list, id, err)
		}
		out = models.Clone(*list.of(&artwork))
		return nil
	})
	return out, err
}

// PrependUser puts userID at the front of the artwork's list.
func (r *GORMArtworkRepository) PrependUser(ctx context.Context, id string, list ArtworkList, userID string) ([]string, error) {
	return r.editList(ctx, id, list, func(a *models.Artwork) error {
		return prependUser(a, list, userID)
	})
}

// RemoveUser drops userID from the artwork's list.
func (r *GORMArtworkRepository) RemoveUser(ctx context.Context, id string, list ArtworkList, userID string) ([]string, error) {
	return r.editList(ctx, id, list, func(a *models.Artwork) error {
		return removeUser(a, list, userID)
	})
}
