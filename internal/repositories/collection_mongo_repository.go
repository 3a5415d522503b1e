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

// MongoCollectionRepository is a MongoDB implementation of CollectionRepository.
type MongoCollectionRepository struct {
	col *mongo.Collection
}

// NewMongoCollectionRepository creates a new instance of MongoCollectionRepository.
func NewMongoCollectionRepository(db *mongo.Database) *MongoCollectionRepository {
	return &MongoCollectionRepository{col: db.Collection("collections")}
}

func (r *MongoCollectionRepository) Find(ctx context.Context, filter CollectionFilter) ([]models.Collection, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.ViewerID != "" {
		query["$or"] = bson.A{bson.M{"is_private": false}, bson.M{"user_id": filter.ViewerID}}
	} else {
		query["is_private"] = false
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find collections: %w", err)
	}
	collections := make([]models.Collection, 0)
	if err := cur.All(ctx, &collections); err != nil {
		return nil, fmt.Errorf("failed to decode collections: %w", err)
	}
	return collections, nil
}

func (r *MongoCollectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	collection := &models.Collection{}
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(collection); err != nil {
		return nil, fmt.Errorf("failed to get collection by ID %s: %w", id, mongoErr(err))
	}
	return collection, nil
}

func (r *MongoCollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	if collection.ID == "" {
		collection.ID = uuid.New().String()
	}
	collection.Normalize()
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = time.Now()
	}
	collection.UpdatedAt = collection.CreatedAt

	if _, err := r.col.InsertOne(ctx, collection); err != nil {
		return fmt.Errorf("failed to create collection: %w", mongoErr(err))
	}
	return nil
}

func (r *MongoCollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	collection.Normalize()
	set := bson.M{
		"name":        collection.Name,
		"description": collection.Description,
		"user_id":     collection.UserID,
		"cover_image": collection.CoverImage,
		"is_private":  collection.IsPrivate,
		"tags":        collection.Tags,
		"updated_at":  time.Now(),
	}
	if err := matchedOne(r.col.UpdateByID(ctx, collection.ID, bson.M{"$set": set})); err != nil {
		return fmt.Errorf("failed to update collection %s: %w", collection.ID, err)
	}
	return nil
}

func (r *MongoCollectionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("collection with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoCollectionRepository) editArtworks(ctx context.Context, id string, filter bson.M, pipeline bson.A, failed error) (*models.Collection, error) {
	collection := &models.Collection{}
	if err := findAndModify(ctx, r.col, id, filter, pipeline, collection, failed); err != nil {
		return nil, fmt.Errorf("failed to update artworks of collection %s: %w", id, err)
	}
	return collection, nil
}

// AddArtwork prepends artworkID in a pipeline update so the cover is decided
// on the list it produces.
func (r *MongoCollectionRepository) AddArtwork(ctx context.Context, id, artworkID, cover string) (*models.Collection, error) {
	filter := bson.M{"_id": id, "artworks": bson.M{"$ne": artworkID}}
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"artworks": bson.M{"$concatArrays": bson.A{
				bson.A{bson.M{"$literal": artworkID}},
				bson.M{"$ifNull": bson.A{"$artworks", bson.A{}}},
			}},
			"updated_at": time.Now(),
		}},
	}
	if cover != "" {
		pipeline = append(pipeline, bson.M{"$set": bson.M{
			"cover_image": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{bson.M{"$size": "$artworks"}, 1}},
					bson.M{"$in": bson.A{
						bson.M{"$ifNull": bson.A{"$cover_image", ""}},
						bson.A{"", models.DefaultCoverImage},
					}},
				}},
				bson.M{"$literal": cover},
				"$cover_image",
			}},
		}})
	}
	return r.editArtworks(ctx, id, filter, pipeline, ErrDuplicate)
}

// RemoveArtwork drops artworkID in a pipeline update and resets the cover of
// a collection it empties.
func (r *MongoCollectionRepository) RemoveArtwork(ctx context.Context, id, artworkID, cover string) (*models.Collection, error) {
	filter := bson.M{"_id": id, "artworks": artworkID}
	reset := interface{}(true)
	if cover != "" {
		reset = bson.M{"$eq": bson.A{"$cover_image", bson.M{"$literal": cover}}}
	}
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"artworks": bson.M{"$filter": bson.M{
				"input": "$artworks",
				"cond":  bson.M{"$ne": bson.A{"$$this", bson.M{"$literal": artworkID}}},
			}},
			"updated_at": time.Now(),
		}},
		bson.M{"$set": bson.M{
			"cover_image": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{bson.M{"$size": "$artworks"}, 0}},
					reset,
				}},
				models.DefaultCoverImage,
				"$cover_image",
			}},
		}},
	}
	return r.editArtworks(ctx, id, filter, pipeline, ErrNotInList)
}
