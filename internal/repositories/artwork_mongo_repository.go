package repositories

import (
	"context"
	"fmt"
	"time"

	"arthemis/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoArtworkRepository is a MongoDB implementation of ArtworkRepository.
type MongoArtworkRepository struct {
	col *mongo.Collection
}

// NewMongoArtworkRepository creates a new instance of MongoArtworkRepository.
func NewMongoArtworkRepository(db *mongo.Database) *MongoArtworkRepository {
	return &MongoArtworkRepository{col: db.Collection("artworks")}
}

// filterBSON converts the search criteria. $text ORs the query terms over the
// text index declared in InitMongo.
func filterBSON(f ArtworkFilter) bson.D {
	filter := bson.D{}
	if f.Query != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.M{"$search": f.Query}})
	}
	if len(f.Medium) > 0 {
		filter = append(filter, bson.E{Key: "medium", Value: bson.M{"$in": f.Medium}})
	}
	if len(f.Style) > 0 {
		filter = append(filter, bson.E{Key: "style", Value: bson.M{"$in": f.Style}})
	}
	if f.MinYear != nil || f.MaxYear != nil {
		year := bson.M{}
		if f.MinYear != nil {
			year["$gte"] = *f.MinYear
		}
		if f.MaxYear != nil {
			year["$lte"] = *f.MaxYear
		}
		filter = append(filter, bson.E{Key: "year", Value: year})
	}
	if f.ArtistID != "" {
		filter = append(filter, bson.E{Key: "artist_id", Value: f.ArtistID})
	}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}
	return filter
}

func (r *MongoArtworkRepository) Search(ctx context.Context, filter ArtworkFilter, sort ArtworkSort, skip, limit int) ([]models.Artwork, int64, error) {
	if skip < 0 {
		return nil, 0, fmt.Errorf("failed to search artworks: skip %d: %w", skip, ErrInvalidRange)
	}
	match := filterBSON(filter)
	total, err := r.col.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count artworks: %w", err)
	}

	sortBy := bson.D{{Key: "created_at", Value: -1}}
	switch sort {
	case SortOldest:
		sortBy = bson.D{{Key: "created_at", Value: 1}}
	case SortPopular:
		sortBy = bson.D{{Key: "views", Value: -1}, {Key: "created_at", Value: -1}}
	}
	opts := options.Find().SetSort(sortBy).SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, match, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search artworks: %w", err)
	}

	artworks := make([]models.Artwork, 0)
	if err := cur.All(ctx, &artworks); err != nil {
		return nil, 0, fmt.Errorf("failed to decode artworks: %w", err)
	}
	return artworks, total, nil
}

func (r *MongoArtworkRepository) GetByID(ctx context.Context, id string) (*models.Artwork, error) {
	artwork := &models.Artwork{}
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(artwork); err != nil {
		return nil, fmt.Errorf("failed to get artwork by ID %s: %w", id, mongoErr(err))
	}
	return artwork, nil
}

func (r *MongoArtworkRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Artwork, error) {
	if len(ids) == 0 {
		return []models.Artwork{}, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get artworks: %w", err)
	}
	artworks := make([]models.Artwork, 0, len(ids))
	if err := cur.All(ctx, &artworks); err != nil {
		return nil, fmt.Errorf("failed to decode artworks: %w", err)
	}
	return orderArtworks(ids, artworks), nil
}

func (r *MongoArtworkRepository) Create(ctx context.Context, artwork *models.Artwork) error {
	if artwork.ID == "" {
		artwork.ID = uuid.New().String()
	}
	artwork.Normalize()
	if artwork.CreatedAt.IsZero() {
		artwork.CreatedAt = time.Now()
	}
	artwork.UpdatedAt = artwork.CreatedAt

	if _, err := r.col.InsertOne(ctx, artwork); err != nil {
		return fmt.Errorf("failed to create artwork: %w", mongoErr(err))
	}
	return nil
}

func (r *MongoArtworkRepository) Update(ctx context.Context, artwork *models.Artwork) error {
	artwork.Normalize()
	artwork.UpdatedAt = time.Now()

	doc, err := bson.Marshal(artwork)
	if err != nil {
		return fmt.Errorf("failed to encode artwork: %w", err)
	}
	var set bson.M
	if err := bson.Unmarshal(doc, &set); err != nil {
		return fmt.Errorf("failed to encode artwork: %w", err)
	}
	for _, key := range []string{"_id", "created_at", "views", string(Likes), string(Saves)} {
		delete(set, key)
	}

	if err := matchedOne(r.col.UpdateByID(ctx, artwork.ID, bson.M{"$set": set})); err != nil {
		return fmt.Errorf("failed to update artwork %s: %w", artwork.ID, err)
	}
	return nil
}

func (r *MongoArtworkRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete artwork: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("artwork with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoArtworkRepository) IncrementViews(ctx context.Context, id string) error {
	if err := matchedOne(r.col.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})); err != nil {
		return fmt.Errorf("failed to increment views of %s: %w", id, err)
	}
	return nil
}

func (r *MongoArtworkRepository) editList(ctx context.Context, id string, list ArtworkList, filter, update bson.M, failed error) ([]string, error) {
	artwork := &models.Artwork{}
	if err := findAndModify(ctx, r.col, id, filter, update, artwork, failed); err != nil {
		return nil, fmt.Errorf("failed to update %s of artwork %s: %w", list, id, err)
	}
	return models.Clone(*list.of(artwork)), nil
}

func (r *MongoArtworkRepository) PrependUser(ctx context.Context, id string, list ArtworkList, userID string) ([]string, error) {
	field := string(list)
	filter := bson.M{"_id": id, field: bson.M{"$ne": userID}}
	update := bson.M{
		"$push": bson.M{field: bson.M{"$each": bson.A{userID}, "$position": 0}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return r.editList(ctx, id, list, filter, update, ErrDuplicate)
}

func (r *MongoArtworkRepository) RemoveUser(ctx context.Context, id string, list ArtworkList, userID string) ([]string, error) {
	field := string(list)
	filter := bson.M{"_id": id, field: userID}
	update := bson.M{
		"$pull": bson.M{field: userID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return r.editList(ctx, id, list, filter, update, ErrNotInList)
}
